package sessions

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
	"stockbridge/internal/notifications"
	"stockbridge/internal/queue"
)

const pollTimeout = 10 * time.Second

// Scheduler is the subset of the background scheduler a registry needs
type Scheduler interface {
	AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error
	RemoveJob(name string) error
}

// SnapshotCache mirrors provider snapshots across replicas
type SnapshotCache interface {
	notifications.Mirror
	GetNotificationSnapshot(ctx context.Context, userID int64) (*models.NotificationSnapshot, error)
}

// Session is the mounted state of one authenticated user: their notification
// provider, review-queue view and the token used by background polls
type Session struct {
	UserID int64
	Store  *notifications.Store

	mountOnce sync.Once
	mu        sync.Mutex
	token     string
	view      queue.ViewState
	lastSeen  time.Time
}

// Context attaches the session's caller identity to parent
func (s *Session) Context(parent context.Context) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return common.WithCaller(parent, s.UserID, s.token)
}

// View returns the current review-queue view
func (s *Session) View() queue.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView stores the review-queue view
func (s *Session) SetView(v queue.ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// LastSeen is when the session was last touched by a request
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(token string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != "" {
		s.token = token
	}
	s.lastSeen = now
}

// Registry mounts one Session per user and tears it down when idle
type Registry struct {
	backend   notifications.Backend
	cache     SnapshotCache
	scheduler Scheduler
	interval  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewRegistry creates a registry whose sessions poll the unread count every interval. cache may be nil.
func NewRegistry(backend notifications.Backend, cache SnapshotCache, scheduler Scheduler, interval time.Duration) *Registry {
	return &Registry{
		backend:   backend,
		cache:     cache,
		scheduler: scheduler,
		interval:  interval,
		now:       time.Now,
		sessions:  make(map[int64]*Session),
	}
}

func pollJobName(userID int64) string {
	return fmt.Sprintf("notification-poll:%d", userID)
}

// Acquire returns the caller's session, mounting it on first use
func (r *Registry) Acquire(ctx context.Context) (*Session, error) {
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	token, _ := common.GetTokenFromContext(ctx)

	r.mu.Lock()
	s, exists := r.sessions[userID]
	if !exists {
		var mirror notifications.Mirror
		if r.cache != nil {
			mirror = r.cache
		}
		s = &Session{
			UserID: userID,
			Store:  notifications.NewStore(userID, r.backend, mirror),
			view:   queue.NewViewState(),
		}
		r.sessions[userID] = s
	}
	r.mu.Unlock()

	s.touch(token, r.now())
	s.mountOnce.Do(func() { r.mount(ctx, s) })

	if s.Store.Closed() {
		return nil, common.ErrSessionClosed
	}
	return s, nil
}

// mount fetches count and list once, then starts the repeating unread-count poll
func (r *Registry) mount(ctx context.Context, s *Session) {
	if r.cache != nil {
		cached, err := r.cache.GetNotificationSnapshot(ctx, s.UserID)
		if err != nil {
			log.Printf("WARN: failed to read cached notifications for user %d: %v", s.UserID, err)
		} else if cached != nil {
			s.Store.Seed(*cached)
		}
	}

	if err := s.Store.Refresh(s.Context(ctx)); err != nil {
		log.Printf("WARN: initial notification fetch for user %d failed: %v", s.UserID, err)
	}

	if s.Store.Closed() {
		return
	}
	if err := r.scheduler.AddJob(pollJobName(s.UserID), r.interval, r.pollUnread, s); err != nil {
		log.Printf("WARN: failed to schedule notification poll for user %d: %v", s.UserID, err)
		return
	}
	// Release may have run between the check above and AddJob
	if s.Store.Closed() && r.owns(s) {
		if err := r.scheduler.RemoveJob(pollJobName(s.UserID)); err != nil {
			log.Printf("WARN: failed to remove notification poll for user %d: %v", s.UserID, err)
		}
	}
}

// owns reports whether no newer session has taken s's slot
func (r *Registry) owns(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.sessions[s.UserID]
	return !ok || current == s
}

func (r *Registry) pollUnread(s *Session) {
	if s.Store.Closed() {
		return
	}
	ctx, cancel := context.WithTimeout(s.Context(context.Background()), pollTimeout)
	defer cancel()

	if _, err := s.Store.RefreshCount(ctx); err != nil {
		log.Printf("WARN: unread count poll for user %d failed: %v", s.UserID, err)
	}
}

// Get returns a mounted session without touching it
func (r *Registry) Get(userID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Active returns every mounted session
func (r *Registry) Active() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// ActiveCount is the number of mounted sessions
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Release unmounts a session: its poll job is removed and its store stops applying responses
func (r *Registry) Release(userID int64) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if !ok {
		return
	}
	// closed first so a mount still in flight sees it after scheduling
	s.Store.Close()
	if err := r.scheduler.RemoveJob(pollJobName(userID)); err != nil {
		log.Printf("WARN: failed to remove notification poll for user %d: %v", userID, err)
	}
}

// SweepIdle releases sessions untouched for longer than idle and returns how many were released
func (r *Registry) SweepIdle(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	var stale []int64
	for _, s := range r.Active() {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s.UserID)
		}
	}
	for _, userID := range stale {
		r.Release(userID)
	}
	if len(stale) > 0 {
		log.Printf("DEBUG: released %d idle sessions", len(stale))
	}
	return len(stale)
}

// CloseAll unmounts every session
func (r *Registry) CloseAll() {
	for _, s := range r.Active() {
		r.Release(s.UserID)
	}
}
