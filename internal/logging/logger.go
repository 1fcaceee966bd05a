// Package logging provides config-driven categorized file logging.
// Logs are written to <dir>/logs/ with a separate file per category.
// Logging is controlled by logging.debug_mode in the config file: when it is
// false no files are created and every logger is a no-op, which keeps the
// interactive explorer's terminal clean.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config resolution
	CategorySession  Category = "session"  // Session lifecycle
	CategoryExplore  Category = "explore"  // Stage machine transitions
	CategoryLayout   Category = "layout"   // Force layout engine
	CategoryProvider Category = "provider" // Insight provider chain
	CategoryAPI      Category = "api"      // Raw LLM API calls
	CategoryArchive  Category = "archive"  // SQLite archive
	CategoryConfig   Category = "config"   // Config watcher
)

// AllCategories lists every known category.
var AllCategories = []Category{
	CategoryBoot, CategorySession, CategoryExplore, CategoryLayout,
	CategoryProvider, CategoryAPI, CategoryArchive, CategoryConfig,
}

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Dir        string          // logs are written under Dir/logs
	DebugMode  bool            // master toggle
	Level      string          // debug, info, warn, error
	Format     string          // json or console
	Categories map[string]bool // per-category toggles; missing means enabled
}

// Logger is a category logger with printf-style methods.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	opts    Options
	level   = zapcore.InfoLevel
	loggers = make(map[Category]*Logger)
	files   []*os.File
	nop     = zap.NewNop().Sugar()
)

// Initialize applies o, closing any loggers opened under previous options.
// It is safe to call again when the config is reloaded.
func Initialize(o Options) error {
	CloseAll()

	mu.Lock()
	defer mu.Unlock()

	opts = o
	level = zapcore.InfoLevel
	if o.Level != "" {
		parsed, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", o.Level, err)
		}
		level = parsed
	}

	if !o.DebugMode {
		return nil
	}
	if o.Dir == "" {
		return fmt.Errorf("log directory required when debug mode is on")
	}
	if err := os.MkdirAll(filepath.Join(o.Dir, "logs"), 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	return nil
}

// IsDebugMode returns whether file logging is on.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if !opts.DebugMode {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for category. Disabled categories get
// a no-op logger.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	enabled := categoryEnabledLocked(category)
	mu.RUnlock()

	if !enabled {
		return &Logger{category: category, sugar: nop}
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(opts.Dir, "logs", fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &Logger{category: category, sugar: nop}
	}
	files = append(files, file)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if opts.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(file), level)
	l := &Logger{
		category: category,
		sugar:    zap.New(core).With(zap.String("cat", string(category))).Sugar(),
	}
	loggers[category] = l
	return l
}

// Category returns the logger's category.
func (l *Logger) Category() Category { return l.category }

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

// Error logs an error.
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// With returns a child logger carrying a structured field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(key, value)}
}

// CloseAll flushes and closes every open log file (call at shutdown).
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		_ = l.sugar.Sync()
	}
	for _, f := range files {
		_ = f.Close()
	}
	files = nil
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// Explore logs to the explore category
func Explore(format string, args ...interface{}) { Get(CategoryExplore).Info(format, args...) }

// ExploreDebug logs debug to the explore category
func ExploreDebug(format string, args ...interface{}) { Get(CategoryExplore).Debug(format, args...) }

// Layout logs debug to the layout category; the engine is chatty.
func Layout(format string, args ...interface{}) { Get(CategoryLayout).Debug(format, args...) }

// Provider logs to the provider category
func Provider(format string, args ...interface{}) { Get(CategoryProvider).Info(format, args...) }

// ProviderWarn logs a warning to the provider category
func ProviderWarn(format string, args ...interface{}) { Get(CategoryProvider).Warn(format, args...) }

// API logs debug to the api category
func API(format string, args ...interface{}) { Get(CategoryAPI).Debug(format, args...) }

// Timer measures an operation and logs its duration on Stop.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
