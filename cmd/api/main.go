package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/novaterra/npc-engine/internal/config"
	"github.com/novaterra/npc-engine/internal/dialogue"
	"github.com/novaterra/npc-engine/internal/handlers"
	"github.com/novaterra/npc-engine/internal/logger"
	"github.com/novaterra/npc-engine/internal/middleware"
	"github.com/novaterra/npc-engine/internal/roster"
	"github.com/novaterra/npc-engine/internal/services"
	"github.com/novaterra/npc-engine/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting NPC dialogue engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"model_name", cfg.ModelName)

	if cfg.TogetherAPIKey == "" {
		log.Error("TOGETHER_API_KEY is required")
		os.Exit(1)
	}
	provider := services.NewTogetherService(cfg.TogetherAPIKey, cfg.ModelName, cfg.ProviderTimeout)

	memory := services.NewChromaService(cfg.ChromaURL, cfg.ChromaTenant, cfg.ChromaDB, cfg.ChromaAPIKey)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := memory.Ping(pingCtx); err != nil {
		// Memory is best-effort; dialogue degrades without it.
		log.Warn("Memory store unreachable, continuing without memory", "url", cfg.ChromaURL, "error", err)
	}
	pingCancel()

	files := storage.NewFileStore(cfg.DataDir, log)
	active := &dialogue.Active{}
	loadDefaults(cfg, files, active, log)

	orchestrator := dialogue.NewOrchestrator(active, provider, memory, log)

	rosterStore := storage.NewRosterStore(cfg.RedisURL, log)
	defer func() {
		if err := rosterStore.Close(); err != nil {
			log.Error("Error closing roster store", "error", err)
		}
	}()

	var rosterHandler *handlers.RosterHandler
	if cfg.OpenAIAPIKey != "" {
		generator := roster.NewGenerator(services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.RosterModel), log)
		rosterHandler = handlers.NewRosterHandler(generator, rosterStore, files, log)
	} else {
		log.Warn("OPENAI_API_KEY not set, roster generation disabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(memory, rosterStore, log))
	mux.Handle("/chat", handlers.NewChatHandler(orchestrator, log))
	mux.Handle("/clear-history", handlers.NewClearHistoryHandler(orchestrator, log))

	characterHandler := handlers.NewCharacterHandler(files, active, log)
	mux.Handle("/config/characters", characterHandler)
	mux.Handle("/config/character/", characterHandler)

	environmentHandler := handlers.NewEnvironmentHandler(files, active, log)
	mux.Handle("/config/environments", environmentHandler)
	mux.Handle("/config/environment/", environmentHandler)

	if rosterHandler != nil {
		mux.Handle("/roster/generate", rosterHandler)
		mux.Handle("/roster/", rosterHandler)
	}

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, mux),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// loadDefaults activates the configured startup character and
// environment. Both are best-effort; the API can load them later.
func loadDefaults(cfg *config.Config, files *storage.FileStore, active *dialogue.Active, log *slog.Logger) {
	if cfg.DefaultCharacterFile != "" {
		if c, err := files.LoadCharacter(cfg.DefaultCharacterFile); err != nil {
			log.Warn("Default character not loaded", "file", cfg.DefaultCharacterFile, "error", err)
		} else {
			active.SetCharacter(c, cfg.DefaultCharacterFile)
			log.Info("Default character loaded", "name", c.Name, "file", cfg.DefaultCharacterFile)
		}
	}
	if cfg.DefaultEnvironmentFile != "" {
		if e, err := files.LoadEnvironment(cfg.DefaultEnvironmentFile); err != nil {
			log.Warn("Default environment not loaded", "file", cfg.DefaultEnvironmentFile, "error", err)
		} else {
			active.SetEnvironment(e, cfg.DefaultEnvironmentFile)
			log.Info("Default environment loaded", "era", e.Era, "file", cfg.DefaultEnvironmentFile)
		}
	}
}
