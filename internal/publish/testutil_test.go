package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"crosspost/internal/post"
	"crosspost/internal/social"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(&post.Post{}, &post.Target{}, &post.Media{}, &social.Account{}))
	return gdb
}

func seedAccount(t *testing.T, gdb *gorm.DB, id uint64, platform string) *social.Account {
	t.Helper()
	a := &social.Account{
		ID:             id,
		UserID:         1,
		Platform:       platform,
		PlatformUserID: "ext-user",
		AccountName:    "acct",
		AccessToken:    "token",
		IsActive:       true,
	}
	require.NoError(t, gdb.Create(a).Error)
	return a
}

func seedPost(t *testing.T, gdb *gorm.DB, status string, accountIDs ...uint64) *post.Post {
	t.Helper()
	past := time.Now().Add(-5 * time.Minute)
	p := &post.Post{
		UserID:      1,
		Content:     "hello",
		Status:      status,
		ScheduledAt: &past,
	}
	for _, id := range accountIDs {
		p.Targets = append(p.Targets, post.Target{SocialAccountID: id, Status: post.TargetPending})
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

// fakeAdapter returns a fixed id or error and remembers how often it
// was called.
type fakeAdapter struct {
	id    string
	err   error
	calls int
}

func (f *fakeAdapter) Publish(ctx context.Context, account *social.Account, c Content) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

// slowAdapter blocks for delay unless the call's context expires
// first.
type slowAdapter struct {
	delay time.Duration
}

func (s *slowAdapter) Publish(ctx context.Context, account *social.Account, c Content) (string, error) {
	select {
	case <-time.After(s.delay):
		return "late", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

var errTransport = errors.New("connection reset by peer")
