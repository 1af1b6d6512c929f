package driven

import (
	"context"
	"time"

	"github.com/campusware/advisor/internal/core/domain"
)

// Session is a persisted conversation transcript.
type Session struct {
	// ID is the unique session identifier.
	ID string `json:"id"`

	// Title is a short display title, derived from the first user turn.
	Title string `json:"title"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Turns is the full transcript, oldest first.
	Turns []domain.Turn `json:"messages"`
}

// SessionSummary is the listing view of a session, without its turns.
type SessionSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStore persists conversation transcripts. The core exposes turns as
// plain records; this store consumes them at the system boundary.
type SessionStore interface {
	// Create makes a new empty session.
	Create(ctx context.Context) (*Session, error)

	// Save persists the session, refreshing UpdatedAt and the auto-title.
	Save(ctx context.Context, session *Session) error

	// Get loads a session by ID. Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Session, error)

	// List returns summaries of all sessions, newest first.
	List(ctx context.Context) ([]SessionSummary, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
}
