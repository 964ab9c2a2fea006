package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"crosspost/internal/post"
	"crosspost/internal/social"
)

// Store persists the outcome of one publish attempt as a single write.
type Store interface {
	SaveResult(ctx context.Context, p *post.Post) error
}

// CredentialResolver looks up the external-account credential behind a
// target. The orchestrator never mutates credentials.
type CredentialResolver interface {
	Resolve(ctx context.Context, accountID uint64) (*social.Account, error)
}

// Orchestrator fans one post out across its targets and reduces the
// per-target outcomes into the post's terminal status.
type Orchestrator struct {
	Store    Store
	Accounts CredentialResolver
	Registry *Registry
	Timeout  time.Duration // per-adapter-call bound; 0 means no bound
	Log      zerolog.Logger
}

// Publish visits every target of p exactly once, in order. One
// destination failing never aborts the others. The updated targets and
// derived status are persisted in one store write; an error here is a
// hard failure and the caller decides what to do with the post.
func (o *Orchestrator) Publish(ctx context.Context, p *post.Post) (*post.Post, error) {
	content := ContentFromPost(p)

	for i := range p.Targets {
		t := &p.Targets[i]

		extID, err := o.publishOne(ctx, t.SocialAccountID, content)
		if err != nil {
			msg := err.Error()
			t.Status = post.TargetFailed
			t.ErrorMessage = &msg
			t.ExternalID = nil
			t.SentAt = nil
			o.Log.Warn().Uint64("post_id", p.ID).Uint64("account_id", t.SocialAccountID).
				Err(err).Msg("target publish failed")
			continue
		}

		now := time.Now()
		t.Status = post.TargetSent
		t.ExternalID = &extID
		t.SentAt = &now
		t.ErrorMessage = nil
	}

	status, err := DeriveStatus(p.Targets)
	if err != nil {
		return nil, err
	}
	p.Status = status
	if post.Terminal(status) {
		now := time.Now()
		p.CompletedAt = &now
	}

	if err := o.Store.SaveResult(ctx, p); err != nil {
		return nil, fmt.Errorf("save publish result: %w", err)
	}

	o.Log.Info().Uint64("post_id", p.ID).Str("status", p.Status).Msg("publish finished")
	return p, nil
}

func (o *Orchestrator) publishOne(ctx context.Context, accountID uint64, c Content) (string, error) {
	account, err := o.Accounts.Resolve(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("resolve account %d: %w", accountID, err)
	}

	adapter, ok := o.Registry.Adapter(account.Platform)
	if !ok {
		return "", fmt.Errorf("unsupported platform %q", account.Platform)
	}

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}
	return adapter.Publish(ctx, account, c)
}
