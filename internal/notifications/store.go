package notifications

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
)

// Backend is the part of the upstream API the provider needs
type Backend interface {
	ListNotifications(ctx context.Context, filter string) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context) (*models.MarkAllResult, error)
	ArchiveNotification(ctx context.Context, id int64) error
	CreateNotification(ctx context.Context, in models.NotificationCreate) (*models.Notification, error)
}

// Mirror receives every resolved snapshot so other replicas can serve it
type Mirror interface {
	SetNotificationSnapshot(ctx context.Context, userID int64, snapshot *models.NotificationSnapshot, ttl time.Duration) error
}

const mirrorTTL = 10 * time.Minute

// Store is the single notification provider of one user session.
// The notification list and the unread count are fetched independently and
// may disagree between ticks. Each fetch is stamped with an issue sequence and
// applied only if nothing newer has been applied to that field since.
type Store struct {
	userID  int64
	backend Backend
	mirror  Mirror

	mu           sync.Mutex
	snapshot     models.NotificationSnapshot
	seq          uint64
	listApplied  uint64
	countApplied uint64
	subscribers  map[int]func(models.NotificationSnapshot)
	nextSubID    int
	closed       bool
}

// NewStore creates an empty provider. mirror may be nil.
func NewStore(userID int64, backend Backend, mirror Mirror) *Store {
	return &Store{
		userID:      userID,
		backend:     backend,
		mirror:      mirror,
		snapshot:    models.NotificationSnapshot{Notifications: []models.Notification{}},
		subscribers: make(map[int]func(models.NotificationSnapshot)),
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() models.NotificationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSnapshot(s.snapshot)
}

// Subscribe registers fn for every applied change and returns the matching unsubscribe func
func (s *Store) Subscribe(fn func(models.NotificationSnapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Seed installs a previously mirrored snapshot if nothing has been fetched yet
func (s *Store) Seed(snapshot models.NotificationSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.listApplied > 0 || s.countApplied > 0 {
		return
	}
	s.snapshot = cloneSnapshot(snapshot)
}

// Close stops the store from applying any further response
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subscribers = make(map[int]func(models.NotificationSnapshot))
}

// Closed reports whether the store has been unmounted
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// RefreshList fetches the notification list. It reports whether the response was applied.
func (s *Store) RefreshList(ctx context.Context) (bool, error) {
	seq := s.issue()
	list, err := s.backend.ListNotifications(ctx, "")
	if err != nil {
		return false, err
	}

	return s.apply(ctx, func(snap *models.NotificationSnapshot) bool {
		if seq < s.listApplied {
			return false
		}
		s.listApplied = seq
		snap.Notifications = list
		return true
	}), nil
}

// RefreshCount fetches the unread count. It reports whether the response was applied.
func (s *Store) RefreshCount(ctx context.Context) (bool, error) {
	seq := s.issue()
	count, err := s.backend.UnreadCount(ctx)
	if err != nil {
		return false, err
	}

	return s.apply(ctx, func(snap *models.NotificationSnapshot) bool {
		if seq < s.countApplied {
			return false
		}
		s.countApplied = seq
		snap.UnreadCount = count
		return true
	}), nil
}

// Refresh fetches list and count concurrently
func (s *Store) Refresh(ctx context.Context) error {
	var wg sync.WaitGroup
	var listErr, countErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, listErr = s.RefreshList(ctx)
	}()
	go func() {
		defer wg.Done()
		_, countErr = s.RefreshCount(ctx)
	}()
	wg.Wait()

	return errors.Join(listErr, countErr)
}

// MarkRead marks one notification read
func (s *Store) MarkRead(ctx context.Context, id int64) error {
	if err := s.backend.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	return s.mutate(ctx, func(snap *models.NotificationSnapshot) { markRead(snap, id) })
}

// MarkAllRead marks every notification read
func (s *Store) MarkAllRead(ctx context.Context) error {
	if _, err := s.backend.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	return s.mutate(ctx, markAllRead)
}

// Archive soft-deletes a notification. Archiving an already archived notification is not an error.
func (s *Store) Archive(ctx context.Context, id int64) error {
	if err := s.backend.ArchiveNotification(ctx, id); err != nil && !isNotFound(err) {
		return err
	}
	return s.mutate(ctx, func(snap *models.NotificationSnapshot) { archive(snap, id) })
}

// Create posts a notification; if it is addressed to this session's user it appears immediately
func (s *Store) Create(ctx context.Context, in models.NotificationCreate) (*models.Notification, error) {
	created, err := s.backend.CreateNotification(ctx, in)
	if err != nil {
		return nil, err
	}
	if in.Recipient != s.userID {
		return created, nil
	}
	return created, s.mutate(ctx, func(snap *models.NotificationSnapshot) { prepend(snap, *created) })
}

// mutate applies a tentative local change that supersedes every fetch issued before it,
// then reconciles with a refresh
func (s *Store) mutate(ctx context.Context, reducer func(*models.NotificationSnapshot)) error {
	applied := s.apply(ctx, func(snap *models.NotificationSnapshot) bool {
		s.seq++
		s.listApplied = s.seq
		s.countApplied = s.seq
		reducer(snap)
		return true
	})
	if !applied {
		return common.ErrSessionClosed
	}

	if err := s.Refresh(ctx); err != nil {
		log.Printf("WARN: notification refresh for user %d failed: %v", s.userID, err)
	}
	return nil
}

// apply runs change under the lock and, if it took effect, notifies subscribers and the mirror
func (s *Store) apply(ctx context.Context, change func(*models.NotificationSnapshot) bool) bool {
	s.mu.Lock()
	if s.closed || !change(&s.snapshot) {
		s.mu.Unlock()
		return false
	}
	s.snapshot.UpdatedAt = time.Now().UTC()
	snap := cloneSnapshot(s.snapshot)
	subs := make([]func(models.NotificationSnapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(cloneSnapshot(snap))
	}

	if s.mirror != nil {
		if err := s.mirror.SetNotificationSnapshot(ctx, s.userID, &snap, mirrorTTL); err != nil {
			common.LogSideEffect("mirror notification snapshot", err)
		}
	}
	return true
}

func isNotFound(err error) bool {
	var failure *common.RequestFailure
	return errors.As(err, &failure) && failure.Status == http.StatusNotFound
}
