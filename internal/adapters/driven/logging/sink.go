// Package logging implements the Session Controller's abstract
// driven.LogSink (spec §1, §4.4, §6) as a rotating set of per-session log
// directories on disk, in the teacher's internal/logger idiom (a
// package-level level switch writing formatted lines to an io.Writer)
// extended with the directory-per-session and rotation shape spec §6/§7
// describe.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/syncevo-core/syncevo-core/internal/core/domain"
	"github.com/syncevo-core/syncevo-core/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.LogSink = (*Sink)(nil)

// sessionLogName is the per-session log file spec §6 names.
const sessionLogName = "client.log"

// Sink is a rotating, per-session-directory LogSink. Each session gets
// its own directory (named with a uuid so concurrent sessions never
// collide) holding client.log plus whatever before/after snapshot files
// the Session Controller writes alongside it.
type Sink struct {
	mu         sync.Mutex
	rootDir    string
	maxLogDirs int
	sessions   map[string]*sessionHandle
}

type sessionHandle struct {
	dir  string
	file *os.File
}

// New creates a Sink rooted at rootDir, retaining at most maxLogDirs
// session directories once Rotate is called (0 meaning unbounded).
func New(rootDir string, maxLogDirs int) *Sink {
	return &Sink{
		rootDir:    rootDir,
		maxLogDirs: maxLogDirs,
		sessions:   make(map[string]*sessionHandle),
	}
}

// SessionDir returns the on-disk directory for sessionID, creating it
// (and a fresh uuid-suffixed name) on first use. Callers that need to
// write a before/after source snapshot file (spec §6) use this to place
// it alongside client.log.
func (s *Sink) SessionDir(sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.ensureSession(sessionID)
	if err != nil {
		return "", err
	}
	return h.dir, nil
}

func (s *Sink) ensureSession(sessionID string) (*sessionHandle, error) {
	if h, ok := s.sessions[sessionID]; ok {
		return h, nil
	}

	dirName := time.Now().UTC().Format("20060102T150405Z") + "-" + uuid.NewString()
	dir := filepath.Join(s.rootDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session log dir: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(dir, sessionLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}

	h := &sessionHandle{dir: dir, file: file}
	s.sessions[sessionID] = h
	return h, nil
}

// Logf writes a formatted log line for sessionID.
func (s *Sink) Logf(sessionID, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.ensureSession(sessionID)
	if err != nil {
		return
	}
	fmt.Fprintf(h.file, "[%s] "+format+"\n", append([]any{time.Now().UTC().Format(time.RFC3339)}, args...)...)
}

// Progress forwards a protocol-engine progress event as a log line.
func (s *Sink) Progress(sessionID string, event domain.ProgressEvent) {
	s.Logf(sessionID, "progress source=%s type=%d extras=(%d,%d,%d) text=%q",
		event.SourceID, event.Type, event.Extra1, event.Extra2, event.Extra3, event.Text)
}

// Close flushes and closes every open session log file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for id, h := range s.sessions {
		if err := h.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.sessions, id)
	}
	return firstErr
}

// Rotate removes the oldest session directories beyond maxLogDirs. Per
// spec §7, a successful session allows rotation to expire older
// directories; the Session Controller only calls Rotate after a session
// whose final status was OK, never after a failed one.
func (s *Sink) Rotate() error {
	if s.maxLogDirs <= 0 {
		return nil
	}

	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list session log dirs: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	if len(dirs) <= s.maxLogDirs {
		return nil
	}

	toRemove := dirs[:len(dirs)-s.maxLogDirs]
	for _, name := range toRemove {
		if err := os.RemoveAll(filepath.Join(s.rootDir, name)); err != nil {
			return fmt.Errorf("remove expired session log dir %s: %w", name, err)
		}
	}
	return nil
}
