package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/novel-script/internal/config"
	"github.com/jwebster45206/novel-script/internal/logger"
	"github.com/jwebster45206/novel-script/internal/services"
	"github.com/jwebster45206/novel-script/internal/services/events"
	"github.com/jwebster45206/novel-script/pkg/playback"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
	// Broadcast mirrors playback to Redis so /v1/events subscribers can
	// follow along.
	Broadcast bool
}

func main() {
	appCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// The UI owns the terminal.
	if appCfg.LogFile == "" {
		appCfg.LogFile = "console.log"
	}
	log := logger.Setup(appCfg)

	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:"+appCfg.Port),
		Timeout:    30 * time.Second,
		Broadcast:  strings.EqualFold(getEnv("BROADCAST", "false"), "true"),
	}
	client := &http.Client{Timeout: cfg.Timeout}

	var scriptName, scriptText string
	local := false
	if len(os.Args) > 1 {
		scriptName = os.Args[1]
		data, err := os.ReadFile(scriptName)
		switch {
		case err == nil:
			local = true
			scriptText = string(data)
			scriptName = strings.TrimSuffix(filepath.Base(scriptName), filepath.Ext(scriptName))
		case !os.IsNotExist(err):
			fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", scriptName, err)
			os.Exit(1)
		}
	}

	if !local && !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API at %s. Start it, or pass a script file.\n", cfg.APIBaseURL)
		os.Exit(1)
	}

	st := newStage(appCfg.SpritesDir, log)
	var surface playback.Surface = st

	if cfg.Broadcast {
		redisService, err := services.NewRedisService(appCfg.RedisURL, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to configure Redis: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = redisService.Close() // Ignore error in defer
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisService.Ping(ctx)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Broadcast requested but Redis is unavailable: %v\n", err)
			os.Exit(1)
		}
		surface = events.NewBroadcastSurface(context.Background(), st, events.NewBroadcaster(redisService.Client(), log), log)
	}

	player := playback.New(surface,
		playback.WithRevealDelay(appCfg.RevealDelay),
		playback.WithLogger(log))

	ui := NewConsoleUI(cfg, client, player, st, log)
	switch {
	case local:
		ui = ui.WithScript(scriptName, scriptText)
	case scriptName != "":
		ui = ui.WithScriptName(scriptName)
	}

	p := tea.NewProgram(ui,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
