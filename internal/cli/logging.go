package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rpggio/flowboard/internal/config"
)

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// newLogger writes to cfg.Log.Path when set, otherwise to fallback.
func newLogger(cfg config.Config, fallback io.Writer) (*slog.Logger, func(), error) {
	w := fallback
	closeFn := func() {}

	if cfg.Log.Path != "" {
		file, err := openCappedFile(cfg.Log.Path, maxLogSizeBytes, keepLogSizeBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("log file error: %w", err)
		}
		w = file
		closeFn = func() { _ = file.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return logger, closeFn, nil
}

// cappedFile is an append-only log file that, once it grows past maxSize
// bytes, is cut back to its newest keepSize bytes.
type cappedFile struct {
	mu       sync.Mutex
	file     *os.File
	maxSize  int64
	keepSize int64
}

func openCappedFile(path string, maxSize, keepSize int64) (*cappedFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	c := &cappedFile{file: file, maxSize: maxSize, keepSize: keepSize}
	if err := c.trim(); err != nil {
		file.Close()
		return nil, err
	}
	return c, nil
}

func (c *cappedFile) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, c.trim()
}

func (c *cappedFile) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Close()
}

// trim must be called with mu held (or before the file is shared).
func (c *cappedFile) trim() error {
	info, err := c.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= c.maxSize {
		return nil
	}

	tail := make([]byte, c.keepSize)
	n, err := c.file.ReadAt(tail, size-c.keepSize)
	if err != nil && err != io.EOF {
		return err
	}
	if err := c.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end after truncation.
	_, err = c.file.Write(tail[:n])
	return err
}
