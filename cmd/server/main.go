package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/sorennelson/the-preview-crew/internal/config"
	"github.com/sorennelson/the-preview-crew/internal/crew"
	"github.com/sorennelson/the-preview-crew/internal/llm"
	"github.com/sorennelson/the-preview-crew/internal/server"
	"github.com/sorennelson/the-preview-crew/internal/session"
	"github.com/sorennelson/the-preview-crew/internal/spotify"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	ctx := context.Background()

	factory := &llm.Factory{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		MaxTokens:        cfg.MaxTokens,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
	llmClient, err := factory.CreateClient(cfg.LLMProvider, cfg.Model)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	// Image generation always goes through OpenAI, even when another provider
	// handles chat completions.
	imageGen, ok := llmClient.(llm.ImageGenerator)
	if !ok {
		imageGen = llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, cfg.MaxTokens)
	}

	if err := os.MkdirAll(filepath.Join(cfg.FilePath, "images"), 0o755); err != nil {
		log.Fatalf("failed to create images directory: %v", err)
	}

	spotifyClient := spotify.NewClient(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret)

	engine := crew.New(
		llmClient,
		crew.NewSerperTool(cfg.SerperAPIKey),
		crew.NewScrapeTool(),
		crew.NewSpotifyTool(spotifyClient),
		crew.NewImageGenTool(imageGen, cfg.FilePath, cfg.OutboundFilePath),
		cfg.MaxIterations,
		cfg.RPM,
	)

	store := session.NewStore(cfg.SessionTimeout)

	// Expired sessions are evicted on every store access; the cron sweep just
	// keeps an idle process from holding them until the next request.
	c := cron.New()
	if _, err := c.AddFunc("@every 10m", store.Sweep); err != nil {
		log.Fatalf("failed to schedule session sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	srv := server.NewServer(store, engine, cfg.FilePath, cfg.AllowedOrigins, cfg.Port)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("👋 Shutting down")
	if err := srv.Stop(); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
