package post

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("post not found")

type Repo struct {
	DB *gorm.DB
}

// Get loads a post with its targets and media, scoped to the owner.
func (r *Repo) Get(ctx context.Context, id, userID uint64) (*Post, error) {
	var p Post
	err := r.DB.WithContext(ctx).
		Preload("Targets").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Load fetches a post without owner scoping. Used by the scanner, which
// acts on behalf of the schedule, not a request.
func (r *Repo) Load(ctx context.Context, id uint64) (*Post, error) {
	var p Post
	err := r.DB.WithContext(ctx).
		Preload("Targets").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc") }).
		First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Due returns posts whose due time has passed and that are still waiting
// to be picked up. Terminal posts never match.
func (r *Repo) Due(ctx context.Context, now time.Time) ([]Post, error) {
	var out []Post
	err := r.DB.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", StatusScheduled, now).
		Order("scheduled_at asc").
		Find(&out).Error
	return out, err
}

// Claim flips a post from one status to another in a single conditional
// update. Zero rows affected means the post was not in the expected
// status (already claimed, re-edited, or terminal) and the caller must
// not touch it.
func (r *Repo) Claim(ctx context.Context, id uint64, from, to, by string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&Post{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "claimed_by": by, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SaveResult persists the outcome of a publish attempt: every target's
// final status plus the derived post status, in one transaction.
func (r *Repo) SaveResult(ctx context.Context, p *Post) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range p.Targets {
			t := &p.Targets[i]
			if err := tx.Model(&Target{}).Where("id = ?", t.ID).Updates(map[string]any{
				"status":        t.Status,
				"external_id":   t.ExternalID,
				"error_message": t.ErrorMessage,
				"sent_at":       t.SentAt,
			}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&Post{}).Where("id = ?", p.ID).Updates(map[string]any{
			"status":       p.Status,
			"completed_at": p.CompletedAt,
			"updated_at":   time.Now(),
		}).Error
	})
}

// MarkFailed fails a post wholesale, without slot detail. Used when the
// publish attempt itself errored (post vanished, store write failed).
func (r *Repo) MarkFailed(ctx context.Context, id uint64) error {
	now := time.Now()
	return r.DB.WithContext(ctx).Model(&Post{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": StatusFailed, "completed_at": now, "updated_at": now}).Error
}
