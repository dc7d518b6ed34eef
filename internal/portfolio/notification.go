package portfolio

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultNotificationTTL is how long a notification stays current.
const DefaultNotificationTTL = 5 * time.Second

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a transient message describing an operation's outcome.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// notify replaces the current notification and schedules its expiry.
// The listener, if any, is called outside the lock.
func (s *Store) notify(severity Severity, message string) Notification {
	n := Notification{
		ID:        ulid.Make().String(),
		Message:   message,
		Severity:  severity,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	if s.expiry != nil {
		s.expiry.Stop()
	}
	s.notification = &n
	s.expiry = time.AfterFunc(s.ttl, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.notification != nil && s.notification.ID == n.ID {
			s.notification = nil
		}
	})
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener(n)
	}
	return n
}

// Notification returns the current notification, or nil once it has expired
// or been cleared.
func (s *Store) Notification() *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notification == nil {
		return nil
	}
	n := *s.notification
	return &n
}
