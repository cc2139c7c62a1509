package config

import "github.com/gyaneshwarpardhi/rxndiagram/internal/logging"

// Config is the top-level YAML structure.
type Config struct {
	Version   string            `yaml:"version"`
	Server    ServerConf        `yaml:"server"`
	Editor    EditorConf        `yaml:"editor"`
	Store     StoreConf         `yaml:"store"`
	Log       logging.LogConfig `yaml:"log"`
	Documents []DocumentRef     `yaml:"documents"`
}

// ServerConf holds HTTP server settings.
type ServerConf struct {
	Addr              string `yaml:"addr"`
	ReadTimeoutMs     int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs    int    `yaml:"write_timeout_ms"`
	ShutdownTimeoutMs int    `yaml:"shutdown_timeout_ms"`
}

// EditorConf holds per-document session settings.
type EditorConf struct {
	HistoryLimit     int `yaml:"history_limit"` // 0 = unbounded
	QueueDepth       int `yaml:"queue_depth"`
	CommandTimeoutMs int `yaml:"command_timeout_ms"`
}

// StoreConf configures snapshot persistence. An empty path disables it.
type StoreConf struct {
	Path string `yaml:"path"`
}

// DocumentRef is a snapshot file opened at startup.
type DocumentRef struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}
