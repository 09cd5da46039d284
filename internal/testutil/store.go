package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
)

// Clock is a deterministic time source that advances one millisecond on
// every read, so consecutive writes get strictly increasing timestamps.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock starting at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// NewTestStore creates an in-memory SQLStore with all migrations applied
// and a deterministic clock. It automatically closes the store when the
// test completes.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:", store.WithClock(NewClock().Now))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestUser inserts a user with the given external identity.
func NewTestUser(t *testing.T, s store.Store, openID string) *model.User {
	t.Helper()

	u, err := s.UpsertUserByOpenID(context.Background(), model.User{
		OpenID: openID,
		Name:   openID,
		Email:  openID + "@example.com",
	})
	if err != nil {
		t.Fatalf("creating test user %s: %v", openID, err)
	}
	return u
}
