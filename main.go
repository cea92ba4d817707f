package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"news-chat/internal/api"
	"news-chat/internal/chat"
	"news-chat/internal/config"
	"news-chat/internal/logging"
	"news-chat/internal/session"
	"news-chat/internal/transport"
	"news-chat/internal/ui"
)

func main() {
	if err := logging.InitLogger(); err != nil {
		log.Printf("Failed to initialize debug logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get user home directory: %v", err)
	}

	dbPath := filepath.Join(homeDir, config.DefaultConfigDir, "db")
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	store := session.NewStore(dbPath)
	defer store.Close()

	var (
		tr        transport.Transport
		apiClient api.Client
	)

	switch cfg.Mode {
	case config.ModeLive:
		tr = transport.NewSocket(cfg.Backend.WebSocketURL, cfg.Reconnect.MaxAttempts, cfg.ReconnectDelay())
		apiClient = api.NewHTTPClient(cfg.Backend.BaseURL, cfg.RequestTimeout(), cfg.GenerateTimeout())
	default:
		sim := transport.NewSimulated()
		sim.SetPacing(
			time.Duration(cfg.Simulator.ChunkDelayMinMs)*time.Millisecond,
			time.Duration(cfg.Simulator.ChunkDelayMaxMs)*time.Millisecond,
			time.Duration(cfg.Simulator.EndDelayMs)*time.Millisecond,
		)
		tr = sim
		apiClient = api.NewMockClient()
	}

	controller := chat.NewController(store, apiClient, tr, cfg.Streaming)
	defer controller.Close()

	chatView := ui.NewChatViewModel(controller, tr, cfg.Mode, 80, 24)

	p := tea.NewProgram(chatView, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
