package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hmhhmm/apex-insurance/internal/config"
	"github.com/hmhhmm/apex-insurance/internal/db"
	"github.com/hmhhmm/apex-insurance/internal/server"
	"github.com/hmhhmm/apex-insurance/internal/server/ratelimit"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing the plan catalog, risk scoring, recommendations and the chat assistant.

Account endpoints (registration, saved profiles, recommendation history) are enabled when a database URL is configured.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply pending database migrations on start")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	deps := server.Deps{
		Catalog:     svc.Catalog,
		Advisor:     svc.Advisor,
		Assistant:   svc.Assistant,
		RateLimit:   ratelimit.LoadConfig(),
		CORSOrigins: cfg.Server.CORSOrigins,
	}

	if cfg.Database.URL != "" {
		if deps.JWT, err = config.NewJWTConfig(); err != nil {
			return eris.Wrap(err, "jwt config")
		}
		if deps.Password, err = config.NewPasswordConfig(); err != nil {
			return eris.Wrap(err, "password config")
		}

		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return eris.Wrap(err, "connect database")
		}
		if serveMigrate {
			if err := database.Migrate(ctx); err != nil {
				database.Close()
				return eris.Wrap(err, "migrate database")
			}
		}
		deps.DB = database
	}

	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	srv, err := server.New(port, deps)
	if err != nil {
		if deps.DB != nil {
			deps.DB.Close()
		}
		return eris.Wrap(err, "create server")
	}

	zap.L().Info("apex_agent serving",
		zap.Int("port", port),
		zap.Int("plans", len(svc.Catalog)),
		zap.Bool("accounts", deps.DB != nil),
		zap.Bool("llm", svc.LLM != nil),
	)
	return srv.Start(ctx)
}
