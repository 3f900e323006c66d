package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/covid-charts/internal/view"
)

var (
	// ErrNotFound is returned when no live session has the given id.
	ErrNotFound = errors.New("session not found")
)

// PageFactory builds the page of a new session.
type PageFactory func() *view.Page

type session struct {
	page     *view.Page
	lastSeen time.Time
}

// Store is a concurrency-safe in-memory set of visitor pages.
type Store struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*session

	newPage PageFactory

	// retention configuration
	maxSessions int           // max number of live sessions (0 = unlimited)
	maxAge      time.Duration // idle time after which a session expires (0 = never)

	now func() time.Time
}

// NewStore creates a Store with optional limits.
func NewStore(newPage PageFactory, maxSessions int, maxAge time.Duration) *Store {
	return &Store{
		data:        make(map[string]*session),
		newPage:     newPage,
		maxSessions: maxSessions,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

// Create starts a new session and returns its id and page.
func (s *Store) Create() (string, *view.Page) {
	id := uuid.NewString()
	page := s.newPage()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[id] = &session{page: page, lastSeen: now}

	// Enforce retention by count, dropping the least recently seen.
	for s.maxSessions > 0 && len(s.data) > s.maxSessions {
		var oldestID string
		var oldestAt time.Time
		for k, v := range s.data {
			if k == id {
				continue
			}
			if oldestID == "" || v.lastSeen.Before(oldestAt) {
				oldestID, oldestAt = k, v.lastSeen
			}
		}
		delete(s.data, oldestID)
	}

	return id, page
}

// Get returns the page of a live session and marks it as seen.
func (s *Store) Get(id string) (*view.Page, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok || s.expired(sess, now) {
		delete(s.data, id)
		return nil, ErrNotFound
	}
	sess.lastSeen = now
	return sess.page, nil
}

// GetOrCreate returns the page for id, creating a new session when id is
// unknown or expired. created reports whether a new id was issued.
func (s *Store) GetOrCreate(id string) (newID string, page *view.Page, created bool) {
	if page, err := s.Get(id); err == nil {
		return id, page, false
	}
	newID, page = s.Create()
	return newID, page, true
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.data {
		if s.expired(sess, now) {
			delete(s.data, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Store) expired(sess *session, now time.Time) bool {
	return s.maxAge > 0 && now.Sub(sess.lastSeen) > s.maxAge
}
