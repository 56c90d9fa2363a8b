// Package config defines the server's configuration surface and
// validates it. A *Config is threaded through constructors explicitly
// rather than read from a package-level singleton.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const MaxPort = 65535

// Config is the server's validated configuration surface.
type Config struct {
	Port        int
	RootFolder  string
	IndexFile   string
	WorkerCount int
	Debug       bool
}

// Default returns the documented defaults before any flags are parsed.
func Default() *Config {
	return &Config{
		Port:        60001,
		RootFolder:  "./www",
		IndexFile:   "index.html",
		WorkerCount: 4,
		Debug:       false,
	}
}

// Load parses args (normally os.Args[1:]) into a Config seeded from
// Default and validates it, returning an error describing the first
// problem found.
func Load(args []string) (*Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("origind", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "listen port (1-65535)")
	fs.StringVar(&cfg.RootFolder, "root", cfg.RootFolder, "document root directory")
	fs.StringVar(&cfg.IndexFile, "index", cfg.IndexFile, "index file name, served for '/'")
	fs.IntVar(&cfg.WorkerCount, "threads", cfg.WorkerCount, "worker count (0 = inline on acceptor)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug-level logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > MaxPort {
		return fmt.Errorf("port must be between 1 and %d, got %d", MaxPort, c.Port)
	}
	if c.WorkerCount < 0 {
		return fmt.Errorf("worker count must be 0 or greater, got %d", c.WorkerCount)
	}
	if err := c.validateRootFolder(); err != nil {
		return err
	}
	if err := c.validateIndexFile(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRootFolder() error {
	if c.RootFolder == "" {
		return fmt.Errorf("root folder cannot be empty")
	}
	info, err := os.Stat(c.RootFolder)
	if err != nil {
		return fmt.Errorf("root folder does not exist: %s", c.RootFolder)
	}
	if !info.IsDir() {
		return fmt.Errorf("root folder is not a directory: %s", c.RootFolder)
	}
	return nil
}

func (c *Config) validateIndexFile() error {
	if c.IndexFile == "" {
		return fmt.Errorf("index file name cannot be empty")
	}
	dot := indexOfLastDot(c.IndexFile)
	if dot <= 0 || dot == len(c.IndexFile)-1 {
		return fmt.Errorf("index file must contain an extension: %s", c.IndexFile)
	}

	fullPath := filepath.Join(c.RootFolder, c.IndexFile)
	info, err := os.Stat(fullPath)
	if err != nil {
		return fmt.Errorf("index file does not exist: %s", c.IndexFile)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("index file is not a regular file: %s", c.IndexFile)
	}
	return nil
}

func indexOfLastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
