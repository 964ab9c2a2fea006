package publish

import (
	"context"
	"errors"
	"fmt"

	"crosspost/internal/post"
)

var ErrBusy = errors.New("post is being published")

// Service is the caller-facing publish surface: the manual "publish
// now" trigger.
type Service struct {
	Repo *post.Repo
	Orch *Orchestrator
}

// PublishNow publishes a post immediately, regardless of due time or
// draft/scheduled status. Already-published is a precondition error and
// mutates nothing. A hard orchestration error puts the prior status
// back so the post is not stranded in publishing.
func (s *Service) PublishNow(ctx context.Context, postID, userID uint64) (*post.Post, error) {
	p, err := s.Repo.Get(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if p.Status == post.StatusPublished {
		return nil, post.ErrAlreadyPublished
	}
	if p.Status == post.StatusPublishing {
		return nil, ErrBusy
	}

	prior := p.Status
	by := fmt.Sprintf("manual:%d", userID)
	claimed, err := s.Repo.Claim(ctx, p.ID, prior, post.StatusPublishing, by)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrBusy
	}

	updated, err := s.Orch.Publish(ctx, p)
	if err != nil {
		// best effort: release the claim
		if _, rerr := s.Repo.Claim(ctx, p.ID, post.StatusPublishing, prior, by); rerr != nil {
			s.Orch.Log.Error().Uint64("post_id", p.ID).Err(rerr).Msg("claim restore failed")
		}
		return nil, err
	}
	return updated, nil
}
