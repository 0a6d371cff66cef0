package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studychat/internal/events"
	"studychat/internal/models"
	"studychat/internal/storage"
)

// newTestDB opens an isolated in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrateTables(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, name string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Name: name, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

// fakePublisher records notifications instead of producing to Kafka.
type fakePublisher struct {
	mu            sync.Mutex
	notifications []events.Notification
	err           error
}

func (f *fakePublisher) Publish(_ context.Context, n events.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakePublisher) published() []events.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

func (f *fakePublisher) byEvent(event events.EventName) []events.Notification {
	var out []events.Notification
	for _, n := range f.published() {
		if n.Event == event {
			out = append(out, n)
		}
	}
	return out
}
