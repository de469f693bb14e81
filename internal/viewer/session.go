package viewer

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/fragdeck/internal/render"
)

// ErrPageOutOfRange is returned when selecting a page that does not exist.
var ErrPageOutOfRange = errors.New("page out of range")

// Session is the presentation state of one loaded deck.
// A new load always creates a new session; pages are never patched in place.
type Session struct {
	mu sync.Mutex

	ID       string
	Title    string
	Filename string

	CreatedAt time.Time
	UpdatedAt time.Time

	pages   []*render.Page
	current int
}

// NewSession creates a session positioned on the first page.
func NewSession(id, title, filename string, pages []*render.Page) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Title:     title,
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		pages:     pages,
	}
}

// Advance reveals the next fragment of the current page. Once every fragment
// is shown it moves to the next page, and stops on the last one.
func (s *Session) Advance() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pages) == 0 {
		return s.snapshotLocked()
	}
	page := s.pages[s.current]
	switch {
	case page.Index < len(page.Fragments):
		page.Index++
	case s.current < len(s.pages)-1:
		s.current++
	}
	s.UpdatedAt = time.Now()
	return s.snapshotLocked()
}

// Back moves to the previous page, keeping its reveal state.
func (s *Session) Back() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 0 {
		s.current--
	}
	s.UpdatedAt = time.Now()
	return s.snapshotLocked()
}

// Goto selects the page at zero-based index n.
func (s *Session) Goto(n int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 || n >= len(s.pages) {
		return s.snapshotLocked(), fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n+1, len(s.pages))
	}
	s.current = n
	s.UpdatedAt = time.Now()
	return s.snapshotLocked(), nil
}

// WithCurrent calls fn with the current page while holding the session lock,
// so the reveal cursor cannot move during rendering.
func (s *Session) WithCurrent(fn func(p *render.Page) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pages) == 0 {
		return fmt.Errorf("%w: deck has no pages", ErrPageOutOfRange)
	}
	return fn(s.pages[s.current])
}

// PageSummary describes one page of a deck.
type PageSummary struct {
	Title     string `json:"title"`
	Fragments int    `json:"fragments"`
	Revealed  int    `json:"revealed"`
}

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	ID       string        `json:"deck_id"`
	Title    string        `json:"title"`
	Filename string        `json:"filename"`
	Page     int           `json:"page"`
	Pages    []PageSummary `json:"pages"`
	// Done is set once the last page shows every fragment.
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the session state. Page is 1-based.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:        s.ID,
		Title:     s.Title,
		Filename:  s.Filename,
		Pages:     make([]PageSummary, 0, len(s.pages)),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for _, p := range s.pages {
		snap.Pages = append(snap.Pages, PageSummary{
			Title:     p.Title(),
			Fragments: len(p.Fragments),
			Revealed:  p.Index,
		})
	}
	if len(s.pages) > 0 {
		snap.Page = s.current + 1
		last := s.pages[len(s.pages)-1]
		snap.Done = s.current == len(s.pages)-1 && last.Remaining() == 0
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
