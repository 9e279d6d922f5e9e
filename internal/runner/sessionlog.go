package runner

import (
	"fmt"
	"os"
	"path/filepath"
)

// sessionLogDir is the directory, relative to the project directory,
// holding append-only per-session transcripts per spec.md §6.
const sessionLogDir = ".autonomous"

// sessionLog is an append-only text file capturing one session's agent
// transcript plus a final stats block.
type sessionLog struct {
	f *os.File
}

// openSessionLog creates (or truncates) the log file for the given
// session id under projectDir/.autonomous/session-<id>.log.
func openSessionLog(projectDir string, sessionID int64) (*sessionLog, error) {
	dir := filepath.Join(projectDir, sessionLogDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session log dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("session-%03d.log", sessionID))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create session log %s: %w", path, err)
	}
	return &sessionLog{f: f}, nil
}

func (l *sessionLog) Printf(format string, args ...any) {
	if l == nil || l.f == nil {
		return
	}
	fmt.Fprintf(l.f, format+"\n", args...)
}

func (l *sessionLog) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	return l.f.Close()
}
