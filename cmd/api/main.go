// @title           Document Summary API
// @version         1.0
// @description     Summarizes uploaded documents and records user feedback on the summaries
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/data/cache"
	"github.com/akolanti/GoSummary/internal/data/redisStore"
	"github.com/akolanti/GoSummary/internal/data/store"
	"github.com/akolanti/GoSummary/internal/events"
	"github.com/akolanti/GoSummary/internal/handlers"
	"github.com/akolanti/GoSummary/internal/mcpserver"
	"github.com/akolanti/GoSummary/internal/middleware"
	"github.com/akolanti/GoSummary/internal/server"
	"github.com/akolanti/GoSummary/internal/summarizer"
	"github.com/akolanti/GoSummary/internal/summarizer/llm/modelFactory"
	"github.com/akolanti/GoSummary/internal/summarizer/loader"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "summarizer",
	Short: "Document summary API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		//a missing .env is fine, the environment may already be set
		_ = godotenv.Load()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		return run(settings)
	},
	SilenceUsage: true,
}

func init() {
	config.SetDefaults(v)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "optional YAML config file")
	flags.String("listen-addr", config.ServerListenAddr, "server listen address")
	flags.String("log-level", "debug", "log level (debug, info, warn, error)")
	flags.Bool("prod", false, "json logs for production")
	flags.String("execution-strategy", string(config.ModeStream), "default execution mode (stream, invoke)")
	flags.Bool("no-auth-bypass", false, "serve without bearer authentication")

	_ = v.BindPFlag("listen_addr", flags.Lookup("listen-addr"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("prod", flags.Lookup("prod"))
	_ = v.BindPFlag("execution_strategy", flags.Lookup("execution-strategy"))
	_ = v.BindPFlag("no_auth_bypass", flags.Lookup("no-auth-bypass"))

	v.SetEnvPrefix("SUMMARIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func loadSettings() (config.Settings, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return config.Settings{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}
	return config.Load(v)
}

func run(settings config.Settings) error {
	logger_i.Init(settings.IsProd, settings.LogLevel)
	var logger = logger_i.NewLogger("main")

	serviceContext, cancel := context.WithCancel(context.Background())
	defer cancel()

	summaryStore, err := store.NewSummaryStore(serviceContext, settings.Store, settings.RedisPassword)
	if err != nil {
		return fmt.Errorf("summary store: %w", err)
	}
	promptCache, err := cache.NewPromptCache(serviceContext, settings.Cache, settings.RedisPassword)
	if err != nil {
		logger.Error("Prompt cache is offline, continuing without it", "error", err)
		promptCache = cache.NoopPromptCache{}
	}
	invoker, err := modelFactory.NewInvoker(serviceContext, settings, promptCache)
	if err != nil {
		return fmt.Errorf("chat model: %w", err)
	}
	loaders := loader.NewRegistry(loader.Options{Transcriber: modelFactory.NewTranscriber(settings.ChatModel)})

	sinks := []events.Sink{events.NewLogSink()}
	var natsSink *events.NATSSink
	if settings.NATSURL != "" {
		if natsSink, err = events.ConnectNATS(settings.NATSURL); err != nil {
			logger.Error("NATS is offline, lifecycle events are only logged", "error", err)
		} else {
			sinks = append(sinks, natsSink)
		}
	}
	dispatcher := events.NewDispatcher(config.EventWorkerCount, config.EventBufferLimit, sinks...)
	dispatcher.Start()

	service, err := summarizer.NewService(summarizer.ServiceConfig{
		Variant:     settings.Summarizer,
		DefaultMode: settings.DefaultMode,
		ChatModel:   settings.ChatModel,
		Invoker:     invoker,
		Loaders:     loaders,
		Store:       summaryStore,
		Publisher:   dispatcher,
	})
	if err != nil {
		return err
	}
	logger.Info("Summarizer ready",
		"summarizer", settings.Summarizer,
		"mode", service.DefaultMode(),
		"chatModel", settings.ChatModel.Service,
		"store", settings.Store.Service,
		"cache", settings.Cache.Service,
		"mimeTypes", len(service.SupportedMIMETypes()),
	)
	if settings.NoAuthBypass {
		logger.Warn("Authentication is disabled")
	}

	handlers.InitSummaryHandler(service)
	middleware.Configure(settings)
	mcp, err := mcpserver.NewServer(service)
	if err != nil {
		return err
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		StopEvents:       dispatcher.Stop,
		CloseServices: func(ctx context.Context) {
			if err := summaryStore.Close(ctx); err != nil {
				logger.Error("Summary store close failed", "error", err)
			}
			if err := promptCache.Close(); err != nil {
				logger.Error("Prompt cache close failed", "error", err)
			}
			if natsSink != nil {
				natsSink.Close()
			}
			redisStore.CloseAll()
			cancel()
		},
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings.ListenAddr, mcp.Handler())

	<-stopExecution
	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
