package securitylog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Logger appends one line per sensitive action to a dedicated audit file.
// Write failures are reported to the application log but never propagate:
// audit trouble must not take requests down with it.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	log  *zap.Logger
	now  func() time.Time
}

func New(path string, log *zap.Logger) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create security log dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open security log: %w", err)
	}
	return &Logger{file: file, log: log, now: time.Now}, nil
}

// SetClock overrides the time source. Test hook.
func (l *Logger) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// Record writes one audit line. userID/username may be empty for
// unauthenticated attempts.
func (l *Logger) Record(userID, username, action, target string, success bool) {
	outcome := "FAILED"
	if success {
		outcome = "SUCCESS"
	}
	if userID == "" {
		userID = "-"
	}
	if username == "" {
		username = "-"
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("SECURITY: %s | User: %s (%s) | Action: %s | Target: %s | %s\n",
		l.now().UTC().Format(time.RFC3339), userID, username, action, target, outcome)
	if _, err := l.file.WriteString(line); err != nil && l.log != nil {
		l.log.Error("security log write failed", zap.Error(err))
	}
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
