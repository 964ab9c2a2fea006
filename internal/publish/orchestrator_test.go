package publish

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crosspost/internal/post"
	"crosspost/internal/social"
)

func newOrchestrator(gdb *gorm.DB, reg *Registry) *Orchestrator {
	return &Orchestrator{
		Store:    &post.Repo{DB: gdb},
		Accounts: &social.Service{DB: gdb},
		Registry: reg,
		Log:      zerolog.Nop(),
	}
}

func TestPublishPartialFailureIsPublished(t *testing.T) {
	gdb := testDB(t)
	seedAccount(t, gdb, 10, "platformA")
	seedAccount(t, gdb, 11, "platformB")
	p := seedPost(t, gdb, post.StatusPublishing, 10, 11)

	reg := NewRegistry()
	okAdapter := &fakeAdapter{id: "X"}
	badAdapter := &fakeAdapter{err: errTransport}
	reg.Register("platformA", okAdapter)
	reg.Register("platformB", badAdapter)

	orch := newOrchestrator(gdb, reg)
	got, err := orch.Publish(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, post.StatusPublished, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, 1, okAdapter.calls)
	assert.Equal(t, 1, badAdapter.calls)

	require.Len(t, got.Targets, 2)
	a, b := got.Targets[0], got.Targets[1]
	assert.Equal(t, post.TargetSent, a.Status)
	require.NotNil(t, a.ExternalID)
	assert.Equal(t, "X", *a.ExternalID)
	assert.NotNil(t, a.SentAt)

	assert.Equal(t, post.TargetFailed, b.Status)
	require.NotNil(t, b.ErrorMessage)
	assert.Contains(t, *b.ErrorMessage, "connection reset")
	assert.Nil(t, b.ExternalID)

	// persisted, not just in memory
	stored, err := (&post.Repo{DB: gdb}).Load(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, post.StatusPublished, stored.Status)
	assert.Equal(t, post.TargetFailed, stored.Targets[1].Status)
}

func TestPublishAllFailedIsFailed(t *testing.T) {
	gdb := testDB(t)
	seedAccount(t, gdb, 10, "platformA")
	seedAccount(t, gdb, 11, "platformA")
	p := seedPost(t, gdb, post.StatusPublishing, 10, 11)

	reg := NewRegistry()
	bad := &fakeAdapter{err: errTransport}
	reg.Register("platformA", bad)

	var logs bytes.Buffer
	orch := newOrchestrator(gdb, reg)
	orch.Log = zerolog.New(&logs)

	got, err := orch.Publish(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, post.StatusFailed, got.Status)
	assert.NotNil(t, got.CompletedAt)
	// one failure never stops the next slot
	assert.Equal(t, 2, bad.calls)

	// the completion log carries the outcome, it does not claim success
	assert.Contains(t, logs.String(), `"status":"failed"`)
	assert.Contains(t, logs.String(), "publish finished")
	assert.NotContains(t, logs.String(), "post published")
}

func TestPublishSlowAdapterTimesOutSlot(t *testing.T) {
	gdb := testDB(t)
	seedAccount(t, gdb, 10, "platformA")
	seedAccount(t, gdb, 11, "platformB")
	p := seedPost(t, gdb, post.StatusPublishing, 10, 11)

	reg := NewRegistry()
	reg.Register("platformA", &slowAdapter{delay: 5 * time.Second})
	ok := &fakeAdapter{id: "X"}
	reg.Register("platformB", ok)

	orch := newOrchestrator(gdb, reg)
	orch.Timeout = 50 * time.Millisecond

	start := time.Now()
	got, err := orch.Publish(context.Background(), p)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	// the slow slot fails like any other, the next one still runs
	slow := got.Targets[0]
	assert.Equal(t, post.TargetFailed, slow.Status)
	require.NotNil(t, slow.ErrorMessage)
	assert.Contains(t, *slow.ErrorMessage, context.DeadlineExceeded.Error())
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, post.TargetSent, got.Targets[1].Status)

	assert.Equal(t, post.StatusPublished, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestPublishAllSlowAdaptersIsFailed(t *testing.T) {
	gdb := testDB(t)
	seedAccount(t, gdb, 10, "platformA")
	p := seedPost(t, gdb, post.StatusPublishing, 10)

	reg := NewRegistry()
	reg.Register("platformA", &slowAdapter{delay: 5 * time.Second})

	orch := newOrchestrator(gdb, reg)
	orch.Timeout = 50 * time.Millisecond

	got, err := orch.Publish(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, post.StatusFailed, got.Status)
	require.NotNil(t, got.CompletedAt)

	stored, err := (&post.Repo{DB: gdb}).Load(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, post.StatusFailed, stored.Status)
}

func TestPublishUnknownPlatformFailsSlotOnly(t *testing.T) {
	gdb := testDB(t)
	seedAccount(t, gdb, 10, "platformA")
	seedAccount(t, gdb, 11, "somethingelse")
	p := seedPost(t, gdb, post.StatusPublishing, 10, 11)

	reg := NewRegistry()
	reg.Register("platformA", &fakeAdapter{id: "X"})

	got, err := newOrchestrator(gdb, reg).Publish(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, post.StatusPublished, got.Status)
	assert.Equal(t, post.TargetSent, got.Targets[0].Status)
	assert.Equal(t, post.TargetFailed, got.Targets[1].Status)
	require.NotNil(t, got.Targets[1].ErrorMessage)
	assert.Contains(t, *got.Targets[1].ErrorMessage, "unsupported platform")
}

func TestPublishUnresolvableAccountFailsSlot(t *testing.T) {
	gdb := testDB(t)
	// account 10 exists but is disconnected, 99 never existed
	a := seedAccount(t, gdb, 10, "platformA")
	require.NoError(t, gdb.Model(a).Update("is_active", false).Error)
	p := seedPost(t, gdb, post.StatusPublishing, 10, 99)

	reg := NewRegistry()
	reg.Register("platformA", &fakeAdapter{id: "X"})

	got, err := newOrchestrator(gdb, reg).Publish(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, post.StatusFailed, got.Status)
	for _, tgt := range got.Targets {
		assert.Equal(t, post.TargetFailed, tgt.Status)
		require.NotNil(t, tgt.ErrorMessage)
		assert.Contains(t, *tgt.ErrorMessage, "resolve account")
	}
}
