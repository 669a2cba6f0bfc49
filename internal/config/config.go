package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

type GameConfig struct {
	DefaultRuleset         string `json:"default_ruleset"`
	AllowStatsWhileStopped bool   `json:"allow_stats_while_stopped"`
	AutoPossessionFlip     bool   `json:"auto_possession_flip"`
	SingleTeamMode         bool   `json:"single_team_mode"`
	MaxHistorySize         int    `json:"max_history_size"`
	// ViolationDismissSeconds is the wall-clock window before an
	// unconfirmed shot-clock violation auto-dismisses.
	ViolationDismissSeconds int `json:"violation_dismiss_seconds"`
	// ClockFlushIntervalSeconds and ClockFlushMaxBatch bound how often
	// coalesced clock updates are pushed to storage.
	ClockFlushIntervalSeconds int    `json:"clock_flush_interval_seconds"`
	ClockFlushMaxBatch        int    `json:"clock_flush_max_batch"`
	FeedTokenIssuer           string `json:"feed_token_issuer"`
	FeedTokenTTLSeconds       int    `json:"feed_token_ttl_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetDefaultRuleset returns the configured default ruleset id.
func GetDefaultRuleset() string {
	if cfg == nil || cfg.DefaultRuleset == "" {
		return "nba"
	}
	return cfg.DefaultRuleset
}

// GetViolationDismiss returns the violation auto-dismiss window.
func GetViolationDismiss() time.Duration {
	if cfg == nil || cfg.ViolationDismissSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(cfg.ViolationDismissSeconds) * time.Second
}

// GetClockFlushInterval returns how often coalesced clock writes flush.
func GetClockFlushInterval() time.Duration {
	if cfg == nil || cfg.ClockFlushIntervalSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(cfg.ClockFlushIntervalSeconds) * time.Second
}

// GetClockFlushMaxBatch returns the batch bound for coalesced clock writes.
func GetClockFlushMaxBatch() int {
	if cfg == nil || cfg.ClockFlushMaxBatch <= 0 {
		return 16
	}
	return cfg.ClockFlushMaxBatch
}

// GetFeedTokenTTL returns the feed token lifetime.
func GetFeedTokenTTL() time.Duration {
	if cfg == nil || cfg.FeedTokenTTLSeconds <= 0 {
		return 4 * time.Hour
	}
	return time.Duration(cfg.FeedTokenTTLSeconds) * time.Second
}
