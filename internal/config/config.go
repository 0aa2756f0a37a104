// Package config handles lox.toml CLI configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "lox.toml"

// DefaultMaxLine is the longest piece of a REPL line handed to the interpreter.
const DefaultMaxLine = 1023

// Config represents a lox.toml configuration.
type Config struct {
	REPL  REPL  `toml:"repl"`
	Debug Debug `toml:"debug"`
	Log   Log   `toml:"log"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// REPL configures the interactive prompt.
type REPL struct {
	Prompt      string `toml:"prompt"`
	HistoryFile string `toml:"history_file"`
	MaxLine     int    `toml:"max_line"`
}

// Debug toggles the compiler and VM debug output.
type Debug struct {
	PrintCode      bool `toml:"print_code"`
	TraceExecution bool `toml:"trace_execution"`
	Tokens         bool `toml:"tokens"`
	Color          bool `toml:"color"`
}

// Log configures structured logging.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.REPL.Prompt == "" {
		c.REPL.Prompt = "> "
	}
	if c.REPL.MaxLine <= 0 {
		c.REPL.MaxLine = DefaultMaxLine
	}
	if c.Log.Level == "" {
		c.Log.Level = "none"
	}
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	c.Path = path
	c.REPL.HistoryFile = expandHome(c.REPL.HistoryFile)
	c.Log.File = expandHome(c.Log.File)
	c.applyDefaults()
	return &c, nil
}

// FindAndLoad walks up from startDir to find a lox.toml file and loads it.
// When none is found the defaults are returned.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
