package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const (
	logFileName = "host.log"
	maxLogSize  = 5 << 20
)

func logDirectory() string {
	path, err := xdg.StateFile(filepath.Join(appDirName, "logs", logFileName))
	if err != nil {
		return ""
	}
	return filepath.Dir(path)
}

// openLogFile opens dir/host.log for appending. A file already larger than
// maxLogSize is first renamed to host-<timestamp>.log.
func openLogFile(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, logFileName)
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		rolled := filepath.Join(dir, "host-"+now.Format("20060102-150405")+".log")
		if err := os.Rename(path, rolled); err != nil {
			return nil, fmt.Errorf("roll log file: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// setupLogging installs the default slog logger. Standard output is left
// alone because it carries host frames.
func setupLogging(level slog.Level, dir string) func() {
	var w io.Writer = os.Stderr
	color := isatty.IsTerminal(os.Stderr.Fd())
	cleanup := func() {}

	var fileErr error
	if dir != "" {
		f, err := openLogFile(dir, time.Now())
		if err != nil {
			fileErr = err
		} else {
			// file first: a missing stderr in GUI builds must not stop file writes
			w = io.MultiWriter(f, os.Stderr)
			color = false
			cleanup = func() { f.Close() }
		}
	}

	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !color,
	})))

	if fileErr != nil {
		slog.Warn("logging to stderr only", "error", fileErr)
	}
	return cleanup
}
