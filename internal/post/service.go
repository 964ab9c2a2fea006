package post

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrNoTargets        = errors.New("at least one target required")
	ErrAlreadyPublished = errors.New("post already published")
	ErrPastSchedule     = errors.New("scheduled time must be in the future")
)

type Service struct {
	DB *gorm.DB
}

type MediaInput struct {
	URL     string
	Kind    string
	AltText string
}

type CreatePostInput struct {
	Content     string
	Link        string
	AccountIDs  []uint64
	Media       []MediaInput
	ScheduledAt *time.Time
}

type UpdatePostInput struct {
	Content       *string
	Link          *string
	AccountIDs    []uint64 // nil keeps existing targets; non-nil replaces them
	ScheduledAt   *time.Time
	ClearSchedule bool
}

// Create stores a new post. A due time makes it scheduled, absence makes
// it a draft. Targets are required either way: a post with nowhere to go
// can never be handed to the publisher.
func (s *Service) Create(ctx context.Context, userID uint64, in CreatePostInput) (*Post, error) {
	if len(in.AccountIDs) == 0 {
		return nil, ErrNoTargets
	}
	if in.ScheduledAt != nil && in.ScheduledAt.Before(time.Now()) {
		return nil, ErrPastSchedule
	}

	status := StatusDraft
	if in.ScheduledAt != nil {
		status = StatusScheduled
	}

	p := Post{
		UserID:      userID,
		Content:     in.Content,
		Link:        in.Link,
		Tags:        pq.StringArray(ExtractTags(in.Content)),
		Status:      status,
		ScheduledAt: in.ScheduledAt,
	}
	for _, id := range in.AccountIDs {
		p.Targets = append(p.Targets, Target{SocialAccountID: id, Status: TargetPending})
	}
	for i, m := range in.Media {
		p.Media = append(p.Media, Media{URL: m.URL, Kind: m.Kind, AltText: m.AltText, OrderIndex: i})
	}

	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Update edits a draft or scheduled post. Published posts are immutable.
// Replacing targets resets every slot to pending.
func (s *Service) Update(ctx context.Context, id, userID uint64, in UpdatePostInput) (*Post, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Post
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if p.Status == StatusPublished {
			return ErrAlreadyPublished
		}

		if in.Content != nil {
			p.Content = *in.Content
			p.Tags = pq.StringArray(ExtractTags(p.Content))
		}
		if in.Link != nil {
			p.Link = *in.Link
		}
		if in.ClearSchedule {
			p.ScheduledAt = nil
			p.Status = StatusDraft
		} else if in.ScheduledAt != nil {
			if in.ScheduledAt.Before(time.Now()) {
				return ErrPastSchedule
			}
			p.ScheduledAt = in.ScheduledAt
			p.Status = StatusScheduled
		}

		if in.AccountIDs != nil {
			if len(in.AccountIDs) == 0 {
				return ErrNoTargets
			}
			if err := tx.Where("post_id = ?", p.ID).Delete(&Target{}).Error; err != nil {
				return err
			}
			for _, aid := range in.AccountIDs {
				t := Target{PostID: p.ID, SocialAccountID: aid, Status: TargetPending}
				if err := tx.Create(&t).Error; err != nil {
					return err
				}
			}
		}

		p.UpdatedAt = time.Now()
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}

	repo := &Repo{DB: s.DB}
	return repo.Get(ctx, id, userID)
}

// Schedule sets the due time on an existing post and moves it to
// scheduled. Rejected once the post is published.
func (s *Service) Schedule(ctx context.Context, id, userID uint64, at time.Time) (*Post, error) {
	if at.Before(time.Now()) {
		return nil, ErrPastSchedule
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Post
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if p.Status == StatusPublished {
			return ErrAlreadyPublished
		}
		return tx.Model(&p).Updates(map[string]any{
			"status":       StatusScheduled,
			"scheduled_at": at,
			"updated_at":   time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	repo := &Repo{DB: s.DB}
	return repo.Get(ctx, id, userID)
}

// Delete removes a post with its targets and media rows.
func (s *Service) Delete(ctx context.Context, id, userID uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Post
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("post_id = ?", p.ID).Delete(&Media{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", p.ID).Delete(&Target{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}

type ListFilter struct {
	Status    string
	AccountID uint64
	Tag       string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// List returns the owner's posts, newest schedule first, with the total
// count for pagination.
func (s *Service) List(ctx context.Context, userID uint64, f ListFilter) ([]Post, int64, error) {
	q := s.DB.WithContext(ctx).Model(&Post{}).Where("user_id = ?", userID)

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AccountID != 0 {
		q = q.Where("id IN (?)", s.DB.Model(&Target{}).Select("post_id").Where("social_account_id = ?", f.AccountID))
	}
	if f.Tag != "" {
		q = q.Where("? = any(tags)", f.Tag)
	}
	if f.From != nil {
		q = q.Where("scheduled_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("scheduled_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []Post
	err := q.
		Preload("Targets").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc") }).
		Order("scheduled_at desc, created_at desc").
		Limit(limit).Offset(f.Offset).
		Find(&rows).Error
	return rows, total, err
}
