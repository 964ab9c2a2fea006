package publish

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crosspost/internal/post"
)

// brokenStore fails every write; dropPosts additionally wrecks the
// posts table so the follow-up claim restore cannot land either.
type brokenStore struct {
	gdb       *gorm.DB
	dropPosts bool
}

func (s *brokenStore) SaveResult(ctx context.Context, p *post.Post) error {
	if s.dropPosts {
		s.gdb.Exec("DROP TABLE posts")
	}
	return errors.New("store unavailable")
}

func TestPublishNowOnDraft(t *testing.T) {
	gdb := testDB(t)
	seedAccount(t, gdb, 10, "platformA")
	p := seedPost(t, gdb, post.StatusDraft, 10)

	reg := NewRegistry()
	reg.Register("platformA", &fakeAdapter{id: "X"})

	svc := &Service{Repo: &post.Repo{DB: gdb}, Orch: newOrchestrator(gdb, reg)}
	got, err := svc.PublishNow(context.Background(), p.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, post.StatusPublished, got.Status)
	assert.Equal(t, post.TargetSent, got.Targets[0].Status)
}

func TestPublishNowRejectsAlreadyPublished(t *testing.T) {
	gdb := testDB(t)
	seedAccount(t, gdb, 10, "platformA")
	p := seedPost(t, gdb, post.StatusPublished, 10)

	reg := NewRegistry()
	adapter := &fakeAdapter{id: "X"}
	reg.Register("platformA", adapter)

	svc := &Service{Repo: &post.Repo{DB: gdb}, Orch: newOrchestrator(gdb, reg)}
	_, err := svc.PublishNow(context.Background(), p.ID, 1)
	assert.ErrorIs(t, err, post.ErrAlreadyPublished)

	// precondition rejection mutates nothing
	assert.Zero(t, adapter.calls)
	stored, loadErr := (&post.Repo{DB: gdb}).Load(context.Background(), p.ID)
	require.NoError(t, loadErr)
	assert.Equal(t, post.StatusPublished, stored.Status)
	assert.Equal(t, post.TargetPending, stored.Targets[0].Status)
}

func TestPublishNowRestoresClaimOnHardError(t *testing.T) {
	gdb := testDB(t)
	seedAccount(t, gdb, 10, "platformA")
	p := seedPost(t, gdb, post.StatusDraft, 10)

	reg := NewRegistry()
	reg.Register("platformA", &fakeAdapter{id: "X"})
	orch := newOrchestrator(gdb, reg)
	orch.Store = &brokenStore{gdb: gdb}

	svc := &Service{Repo: &post.Repo{DB: gdb}, Orch: orch}
	_, err := svc.PublishNow(context.Background(), p.ID, 1)
	require.Error(t, err)

	// the post is handed back, not left stuck in publishing
	stored, loadErr := (&post.Repo{DB: gdb}).Load(context.Background(), p.ID)
	require.NoError(t, loadErr)
	assert.Equal(t, post.StatusDraft, stored.Status)
}

func TestPublishNowLogsFailedClaimRestore(t *testing.T) {
	gdb := testDB(t)
	seedAccount(t, gdb, 10, "platformA")
	p := seedPost(t, gdb, post.StatusDraft, 10)

	reg := NewRegistry()
	reg.Register("platformA", &fakeAdapter{id: "X"})
	orch := newOrchestrator(gdb, reg)
	orch.Store = &brokenStore{gdb: gdb, dropPosts: true}
	var logs bytes.Buffer
	orch.Log = zerolog.New(&logs)

	svc := &Service{Repo: &post.Repo{DB: gdb}, Orch: orch}
	_, err := svc.PublishNow(context.Background(), p.ID, 1)
	require.Error(t, err)

	assert.Contains(t, logs.String(), "claim restore failed")
}

func TestPublishNowUnknownPost(t *testing.T) {
	gdb := testDB(t)

	svc := &Service{Repo: &post.Repo{DB: gdb}, Orch: newOrchestrator(gdb, NewRegistry())}
	_, err := svc.PublishNow(context.Background(), 12345, 1)
	assert.ErrorIs(t, err, post.ErrNotFound)
}

func TestPublishNowScopedToOwner(t *testing.T) {
	gdb := testDB(t)
	seedAccount(t, gdb, 10, "platformA")
	p := seedPost(t, gdb, post.StatusDraft, 10)

	svc := &Service{Repo: &post.Repo{DB: gdb}, Orch: newOrchestrator(gdb, NewRegistry())}
	_, err := svc.PublishNow(context.Background(), p.ID, 99)
	assert.ErrorIs(t, err, post.ErrNotFound)
}
