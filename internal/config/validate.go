package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"console-warden/internal/domain"
)

// Validation constants define acceptable bounds for configuration values
const (
	// PollInterval validation
	minPollInterval = 100 * time.Millisecond // Below this the console panel rate-limits
	maxPollInterval = 1 * time.Minute        // Events become too stale to act on

	// EloCacheTTL validation
	minEloCacheTTL = 1 * time.Minute
	maxEloCacheTTL = 30 * 24 * time.Hour

	// WriteSettleDelay validation
	maxWriteSettleDelay = 10 * time.Second

	// CommandPrefix validation
	maxPrefixLength = 3
)

// Validate checks that configuration values are within acceptable ranges.
// All failures are returned at once via errors.Join.
func (c *Config) Validate() error {
	var errs []error

	if err := c.validateConsoleURL(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validatePollInterval(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validatePrefix(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateEloSettings(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateWriteSettleDelay(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %w", errors.Join(errs...))
	}

	return nil
}

func (c *Config) validateConsoleURL() error {
	if c.ConsoleURL == "" {
		return fmt.Errorf("CONSOLE_URL is required but not set")
	}

	if !strings.HasPrefix(c.ConsoleURL, "ws://") && !strings.HasPrefix(c.ConsoleURL, "wss://") {
		return fmt.Errorf("CONSOLE_URL must be a ws:// or wss:// URL, got %q", c.ConsoleURL)
	}

	return nil
}

func (c *Config) validatePollInterval() error {
	if c.PollInterval < minPollInterval {
		return fmt.Errorf(
			"CONSOLE_POLL_INTERVAL must be at least %v, got %v (hint: recommended range is 250ms-2s)",
			minPollInterval, c.PollInterval,
		)
	}

	if c.PollInterval > maxPollInterval {
		return fmt.Errorf(
			"CONSOLE_POLL_INTERVAL must be at most %v, got %v",
			maxPollInterval, c.PollInterval,
		)
	}

	return nil
}

func (c *Config) validatePrefix() error {
	if c.CommandPrefix == "" {
		return fmt.Errorf("COMMAND_PREFIX cannot be empty")
	}

	if len(c.CommandPrefix) > maxPrefixLength {
		return fmt.Errorf(
			"COMMAND_PREFIX must be at most %d characters, got %d",
			maxPrefixLength, len(c.CommandPrefix),
		)
	}

	if strings.ContainsAny(c.CommandPrefix, " \t") {
		return fmt.Errorf("COMMAND_PREFIX cannot contain whitespace")
	}

	return nil
}

func (c *Config) validateEloSettings() error {
	var errs []error

	if _, ok := domain.ParseGameMode(c.GameMode); !ok {
		errs = append(errs, fmt.Errorf(
			"GAME_MODE must be one of duel, ffa, tdm, ca, ctf, got %q", c.GameMode,
		))
	}

	if c.EloMin < 0 {
		errs = append(errs, fmt.Errorf("ELO_MIN cannot be negative, got %d", c.EloMin))
	}

	if c.EloMax < 0 {
		errs = append(errs, fmt.Errorf("ELO_MAX cannot be negative, got %d", c.EloMax))
	}

	if c.EloMin > 0 && c.EloMax > 0 && c.EloMin > c.EloMax {
		errs = append(errs, fmt.Errorf(
			"ELO_MIN (%d) cannot exceed ELO_MAX (%d)", c.EloMin, c.EloMax,
		))
	}

	if c.EloCacheTTL < minEloCacheTTL || c.EloCacheTTL > maxEloCacheTTL {
		errs = append(errs, fmt.Errorf(
			"ELO_CACHE_TTL must be between %v and %v, got %v",
			minEloCacheTTL, maxEloCacheTTL, c.EloCacheTTL,
		))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (c *Config) validateWriteSettleDelay() error {
	if c.WriteSettleDelay < 0 {
		return fmt.Errorf("WRITE_SETTLE_DELAY cannot be negative, got %v", c.WriteSettleDelay)
	}

	if c.WriteSettleDelay > maxWriteSettleDelay {
		return fmt.Errorf(
			"WRITE_SETTLE_DELAY must be at most %v, got %v",
			maxWriteSettleDelay, c.WriteSettleDelay,
		)
	}

	return nil
}
