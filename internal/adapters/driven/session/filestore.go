// Package session persists conversation transcripts as one JSON file per
// session.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/ports/driven"
	"github.com/campusware/advisor/internal/logger"
)

// Ensure FileStore implements the interface.
var _ driven.SessionStore = (*FileStore)(nil)

// DefaultTitle is the placeholder title until the first user turn arrives.
const DefaultTitle = "New Chat"

// titleLimit caps the auto-derived title length.
const titleLimit = 30

// FileStore stores each session as <id>.json under a base directory. Corrupt
// files are skipped on listing, never fatal.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates the store, making the base directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating sessions directory: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Create makes a new empty session and persists it immediately.
func (s *FileStore) Create(ctx context.Context) (*driven.Session, error) {
	now := s.now()
	session := &driven.Session{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Turns:     []domain.Turn{},
	}
	if err := s.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Save persists the session, refreshing UpdatedAt and deriving the title from
// the first user turn while it is still the placeholder.
func (s *FileStore) Save(_ context.Context, session *driven.Session) error {
	session.UpdatedAt = s.now()

	if session.Title == DefaultTitle {
		for _, turn := range session.Turns {
			if turn.Role == domain.RoleUser {
				session.Title = deriveTitle(turn.Content)
				break
			}
		}
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", session.ID, err)
	}
	if err := os.WriteFile(s.path(session.ID), data, 0600); err != nil {
		return fmt.Errorf("writing session %s: %w", session.ID, err)
	}
	return nil
}

// Get loads a session by ID. Returns domain.ErrNotFound when absent.
func (s *FileStore) Get(_ context.Context, id string) (*driven.Session, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}

	var session driven.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", id, err)
	}
	return &session, nil
}

// List returns summaries of all sessions, newest first. Corrupt files are
// logged and skipped.
func (s *FileStore) List(_ context.Context) ([]driven.SessionSummary, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	summaries := make([]driven.SessionSummary, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("skipping unreadable session file %s: %v", filepath.Base(file), err)
			continue
		}
		var session driven.Session
		if err := json.Unmarshal(data, &session); err != nil {
			logger.Warn("skipping corrupt session file %s: %v", filepath.Base(file), err)
			continue
		}
		summaries = append(summaries, driven.SessionSummary{
			ID:        session.ID,
			Title:     session.Title,
			UpdatedAt: session.UpdatedAt,
		})
	}

	sort.Slice(summaries, func(a, b int) bool {
		return summaries[a].UpdatedAt.After(summaries[b].UpdatedAt)
	})
	return summaries, nil
}

// Delete removes a session file. Deleting an absent session is not an error.
func (s *FileStore) Delete(_ context.Context, id string) error {
	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// deriveTitle shortens the first user message into a display title.
func deriveTitle(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return DefaultTitle
	}
	runes := []rune(content)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit]) + "..."
	}
	return content
}
