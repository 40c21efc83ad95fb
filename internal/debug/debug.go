// Package debug provides opt-in structured debug logging shared by every
// docvault package, so ingestion internals can be traced without
// polluting the event stream clients see (spec.md §6).
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug is a build flag that can be overridden at link time:
// go build -ldflags "-X github.com/standardbeagle/docvault/internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	debugOutput io.Writer
	debugFile   *os.File
	debugMutex  sync.Mutex
)

// SetDebugOutput sets a custom writer for debug output. Pass nil to
// disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile initializes debug logging to a timestamped file under
// the OS temp directory. Returns the path, or an error if it could not
// be created. Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "docvault-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// IsDebugEnabled reports whether debug logging is active.
func IsDebugEnabled() bool {
	if EnableDebug == "true" {
		return true
	}
	if v := os.Getenv("DEBUG"); v == "1" || v == "true" {
		return true
	}
	return false
}

func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Printf writes debug output when debugging is enabled and configured.
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	if w := getDebugWriter(); w != nil {
		fmt.Fprintf(w, "[DEBUG] "+format, args...)
	}
}

// Log writes structured debug output tagged with a component name.
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	if w := getDebugWriter(); w != nil {
		fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
	}
}

// LogIngest logs coordinator/scanner/convert-pipeline activity.
func LogIngest(format string, args ...interface{}) {
	Log("INGEST", format, args...)
}

// LogStore logs document/ingest-state persistence activity.
func LogStore(format string, args ...interface{}) {
	Log("STORE", format, args...)
}

// LogEvents logs event-bus delivery activity.
func LogEvents(format string, args ...interface{}) {
	Log("EVENTS", format, args...)
}

// CatastrophicError logs an error indicating system failure.
func CatastrophicError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w := getDebugWriter(); w != nil {
		fmt.Fprintf(w, "[CATASTROPHIC] %s", msg)
	}
}
