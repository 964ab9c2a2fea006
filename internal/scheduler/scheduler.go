package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"crosspost/internal/post"
)

// DefaultSpec is the scan cadence. It bounds the worst-case delay
// between a post's due time and its delivery.
const DefaultSpec = "* * * * *"

// Publisher is the orchestrator as the scanner sees it.
type Publisher interface {
	Publish(ctx context.Context, p *post.Post) (*post.Post, error)
}

// Scanner owns the recurring due-post scan. It claims each due post
// before publishing so a slow tick cannot hand the same post out twice.
type Scanner struct {
	Repo *post.Repo
	Orch Publisher
	Log  zerolog.Logger

	// ID identifies this scanner instance in claim bookkeeping.
	ID   string
	Spec string

	cron *cron.Cron
}

func New(repo *post.Repo, orch Publisher, log zerolog.Logger, spec string) *Scanner {
	if spec == "" {
		spec = DefaultSpec
	}
	return &Scanner{
		Repo: repo,
		Orch: orch,
		Log:  log,
		ID:   uuid.NewString(),
		Spec: spec,
		cron: cron.New(),
	}
}

func (s *Scanner) Start() error {
	_, err := s.cron.AddFunc(s.Spec, func() {
		s.ScanOnce(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.Log.Info().Str("scanner_id", s.ID).Str("spec", s.Spec).Msg("scanner started")
	return nil
}

// Stop halts the cadence and waits for an in-flight tick to finish.
func (s *Scanner) Stop() {
	<-s.cron.Stop().Done()
	s.Log.Info().Str("scanner_id", s.ID).Msg("scanner stopped")
}

// ScanOnce runs one tick: select due scheduled posts, claim and publish
// each independently. One post's hard failure never aborts the rest.
func (s *Scanner) ScanOnce(ctx context.Context) {
	due, err := s.Repo.Due(ctx, time.Now())
	if err != nil {
		s.Log.Error().Err(err).Msg("due scan failed")
		return
	}
	if len(due) == 0 {
		return
	}

	s.Log.Info().Int("count", len(due)).Msg("processing due posts")

	for _, p := range due {
		claimed, err := s.Repo.Claim(ctx, p.ID, post.StatusScheduled, post.StatusPublishing, s.ID)
		if err != nil {
			s.Log.Error().Uint64("post_id", p.ID).Err(err).Msg("claim failed")
			continue
		}
		if !claimed {
			// re-edited or taken since the query; not ours
			continue
		}

		full, err := s.Repo.Load(ctx, p.ID)
		if err != nil {
			s.fail(ctx, p.ID, err)
			continue
		}
		if _, err := s.Orch.Publish(ctx, full); err != nil {
			s.fail(ctx, p.ID, err)
		}
	}
}

func (s *Scanner) fail(ctx context.Context, id uint64, cause error) {
	s.Log.Error().Uint64("post_id", id).Err(cause).Msg("publish failed hard")
	if err := s.Repo.MarkFailed(ctx, id); err != nil {
		s.Log.Error().Uint64("post_id", id).Err(err).Msg("mark failed errored")
	}
}
