package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ragdesk/internal/config"
	"ragdesk/internal/domain/audit"
	"ragdesk/internal/domain/document"
	"ragdesk/internal/domain/project"
	"ragdesk/internal/domain/query"
	"ragdesk/internal/domain/voice"
	"ragdesk/internal/googlespeech"
	"ragdesk/internal/openai"
	"ragdesk/internal/sqlite"
	"ragdesk/internal/transport"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if cfg.OpenAI.APIKey == "" {
		logger.Error("OPENAI_API_KEY not set")
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	projectRepo := sqlite.NewProjectRepository(db)
	documentRepo := sqlite.NewDocumentRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)

	openaiClient, err := openai.NewClient(openai.Config{
		APIBase:      cfg.OpenAI.APIBase,
		APIKey:       cfg.OpenAI.APIKey,
		Model:        cfg.OpenAI.Model,
		Instructions: cfg.OpenAI.Instructions,
	})
	if err != nil {
		logger.Error("failed to create openai client", "error", err)
		os.Exit(1)
	}
	indexAdapter := openai.NewIndexAdapter(openaiClient)
	answerService := openai.NewAnswerService(openaiClient)
	openaiSpeech := openai.NewSpeechProvider(openaiClient)

	var googleProvider voice.Provider
	if cfg.Google.APIKey != "" {
		gp, err := googlespeech.NewProvider(googlespeech.Config{
			APIKey:     cfg.Google.APIKey,
			SpeechBase: cfg.Google.SpeechBase,
			TTSBase:    cfg.Google.TTSBase,
		})
		if err != nil {
			logger.Error("failed to create google speech provider", "error", err)
			os.Exit(1)
		}
		googleProvider = gp
	} else {
		logger.Warn("GOOGLE_API_KEY not set, google speech provider disabled")
	}

	auditSvc := audit.NewService(auditRepo, logger)
	projectSvc := project.NewService(projectRepo, auditSvc, logger)
	documentSvc := document.NewService(documentRepo, projectRepo, indexAdapter, auditSvc, logger)
	querySvc := query.NewService(projectRepo, documentRepo, answerService, logger)
	selector := voice.NewSelector(googleProvider, openaiSpeech)

	router := transport.NewRouter(transport.Services{
		Projects:  projectSvc,
		Documents: documentSvc,
		Queries:   querySvc,
		Audit:     auditSvc,
		Voices:    selector,
	}, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "db", cfg.DB.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
