package mcpserver

import (
	"errors"
	"net/http"

	"github.com/akolanti/GoSummary/internal/summarizer"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

var ErrMissingService = errors.New("summarizer service is required")

// Server exposes the summary lifecycle operations as MCP tools.
type Server struct {
	service summarizer.Service
	server  *mcp.Server
	logger  *logger_i.Logger
}

func NewServer(service summarizer.Service) (*Server, error) {
	if service == nil {
		return nil, ErrMissingService
	}
	s := &Server{
		service: service,
		server:  mcp.NewServer(&mcp.Implementation{Name: "go-summary", Version: Version}, nil),
		logger:  logger_i.NewLogger("MCP"),
	}
	s.registerTools()
	return s, nil
}

// Handler serves the streamable HTTP transport, mounted at /mcp.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
