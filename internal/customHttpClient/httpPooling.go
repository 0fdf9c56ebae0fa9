package customHttpClient

import (
	"net"
	"net/http"
	"time"

	"github.com/akolanti/GoSummary/internal/config"
)

var customTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   config.LLMConnectionTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	ForceAttemptHTTP2:   true,
}

// NewHTTPClient shares one pooled transport between every model client.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
