package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for:
//   - a version
//   - non-negative editor limits and positive queue depth and timeouts
//   - known log level and format
//   - documents with an id and a path, ids unique
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	if cfg.Editor.HistoryLimit < 0 {
		errs = append(errs, fmt.Sprintf("editor.history_limit must be >= 0, got %d", cfg.Editor.HistoryLimit))
	}
	if cfg.Editor.QueueDepth <= 0 {
		errs = append(errs, fmt.Sprintf("editor.queue_depth must be > 0, got %d", cfg.Editor.QueueDepth))
	}
	if cfg.Editor.CommandTimeoutMs <= 0 {
		errs = append(errs, fmt.Sprintf("editor.command_timeout_ms must be > 0, got %d", cfg.Editor.CommandTimeoutMs))
	}
	timeouts := []struct {
		name string
		v    int
	}{
		{"server.read_timeout_ms", cfg.Server.ReadTimeoutMs},
		{"server.write_timeout_ms", cfg.Server.WriteTimeoutMs},
		{"server.shutdown_timeout_ms", cfg.Server.ShutdownTimeoutMs},
	}
	for _, t := range timeouts {
		if t.v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0, got %d", t.name, t.v))
		}
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q is not one of json, console", cfg.Log.Format))
	}

	ids := make(map[string]int)
	for i, doc := range cfg.Documents {
		if doc.ID == "" {
			errs = append(errs, fmt.Sprintf("documents[%d]: id is required", i))
		} else if prev, ok := ids[doc.ID]; ok {
			errs = append(errs, fmt.Sprintf("duplicate document id %q (documents[%d] and documents[%d])", doc.ID, prev, i))
		} else {
			ids[doc.ID] = i
		}
		if doc.Path == "" {
			errs = append(errs, fmt.Sprintf("documents[%d]: path is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
