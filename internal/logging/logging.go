// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nhle/lenah/internal/model"
)

// New returns a logger writing to w at the configured level.
func New(w io.Writer, cfg model.LogConfig) (*log.Logger, error) {
	level := log.InfoLevel
	if s := strings.TrimSpace(cfg.Level); s != "" {
		l, err := log.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = l
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "lenah",
		ReportTimestamp: true,
	}), nil
}

// NewFile returns a logger appending to cfg.File, for use while the TUI owns
// the terminal. The returned closer closes the file.
func NewFile(cfg model.LogConfig) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
	}

	logger, err := New(f, cfg)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}
