package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logFilePrefix = "grafanaops-"

// LogConfig holds configuration for log output.
type LogConfig struct {
	Format        string // "human" (default), "text" or "json"
	Level         string // "DEBUG", "INFO" (default), "WARN", "ERROR"
	Output        string // "-" or empty for stderr, "auto" for a generated file in Dir, "none", or a path
	Dir           string // Log directory for "auto" and relative paths
	RetentionDays int    // Days to retain generated log files, 0 keeps everything
}

// LogFile manages a log output lifecycle.
type LogFile struct {
	Path   string // Full path to the log file (empty unless writing to a file)
	file   *os.File
	writer io.Writer
}

// NewLogFile opens the log output described by cfg.
//
// Output behavior:
//   - empty or "-": os.Stderr
//   - "none": io.Discard
//   - "auto": generated file name in Dir
//   - path: absolute, or relative to Dir when Dir is set
func NewLogFile(cfg *LogConfig) (*LogFile, error) {
	lf := &LogFile{}

	switch strings.ToLower(cfg.Output) {
	case "", "-":
		lf.writer = os.Stderr
		return lf, nil
	case "none":
		lf.writer = io.Discard
		return lf, nil
	case "auto":
		lf.Path = filepath.Join(cfg.Dir, GenerateLogFilename(time.Now().UTC()))
	default:
		if filepath.IsAbs(cfg.Output) || cfg.Dir == "" {
			lf.Path = cfg.Output
		} else {
			lf.Path = filepath.Join(cfg.Dir, cfg.Output)
		}
	}

	dir := filepath.Dir(lf.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", dir, err)
	}
	f, err := os.OpenFile(lf.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", lf.Path, err)
	}
	lf.file = f
	lf.writer = f
	return lf, nil
}

// Writer returns the io.Writer for log output.
func (lf *LogFile) Writer() io.Writer {
	return lf.writer
}

// Close closes the log file if it was opened.
func (lf *LogFile) Close() error {
	if lf.file != nil {
		return lf.file.Close()
	}
	return nil
}

// NewFromConfig opens the configured output and builds a Logger on top of it.
// The caller owns the returned LogFile and must close it.
func NewFromConfig(cfg *LogConfig) (Logger, *LogFile, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	lf, err := NewLogFile(cfg)
	if err != nil {
		return nil, nil, err
	}
	if lf.Path != "" && cfg.RetentionDays > 0 {
		_ = CleanupOldLogFiles(filepath.Dir(lf.Path), cfg.RetentionDays)
	}
	l, err := NewWithWriter(cfg.Format, level, lf.Writer())
	if err != nil {
		lf.Close()
		return nil, nil, err
	}
	return l, lf, nil
}

// GenerateLogFilename generates a log filename with format:
// grafanaops-YYYYMMDD-HHMMSS-sss.log
// where sss is milliseconds.
func GenerateLogFilename(t time.Time) string {
	return fmt.Sprintf("%s%s-%03d.log", logFilePrefix,
		t.Format("20060102-150405"),
		t.Nanosecond()/1_000_000)
}

// CleanupOldLogFiles removes generated log files older than retentionDays from dir.
func CleanupOldLogFiles(dir string, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading log directory %q: %w", dir, err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
	return nil
}
