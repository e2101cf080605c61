package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Bind string
	Port int
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MinPlayers      int
	MaxPlayers      int
	CodeLength      int
	TotalMatchups   int           // round 1 head-to-head count
	StartDelay      time.Duration // pause between start and the ready check
	ResultsSeconds  int           // round 1 results window
	WritingSeconds  int           // round 3 writing phase
	VotingSeconds   int           // round 3 per-matchup voting window
	Round3Results   int           // round 3 per-matchup results window
	SessionTimeout  time.Duration // idle lobbies older than this are removed
	CleanupInterval time.Duration
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Default returns the configuration used when no flag or environment
// variable overrides a value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Game: GameConfig{
			MinPlayers:      2,
			MaxPlayers:      8,
			CodeLength:      6,
			TotalMatchups:   15,
			StartDelay:      2 * time.Second,
			ResultsSeconds:  7,
			WritingSeconds:  120,
			VotingSeconds:   30,
			Round3Results:   10,
			SessionTimeout:  60 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate rejects configurations the game logic cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Server.Port)
	}
	if c.Game.MinPlayers < 2 {
		return fmt.Errorf("min-players must be at least 2, got %d", c.Game.MinPlayers)
	}
	if c.Game.MaxPlayers < c.Game.MinPlayers {
		return fmt.Errorf("max-players %d is below min-players %d", c.Game.MaxPlayers, c.Game.MinPlayers)
	}
	if c.Game.CodeLength < 4 {
		return fmt.Errorf("code-length must be at least 4, got %d", c.Game.CodeLength)
	}
	if c.Game.TotalMatchups < 1 {
		return fmt.Errorf("total-matchups must be positive, got %d", c.Game.TotalMatchups)
	}
	if c.Game.WritingSeconds < 1 || c.Game.VotingSeconds < 1 || c.Game.Round3Results < 1 {
		return fmt.Errorf("round timers must be positive")
	}
	return nil
}

// Addr returns the server address in host:port format
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
