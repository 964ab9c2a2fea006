package social

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("social account not found")

type Service struct {
	DB *gorm.DB
}

// Resolve returns the credential for a destination. Inactive accounts
// resolve as not found: a disconnected destination must fail its slot,
// not publish with a dead token.
func (s *Service) Resolve(ctx context.Context, accountID uint64) (*Account, error) {
	var a Account
	err := s.DB.WithContext(ctx).
		Where("id = ? AND is_active = true", accountID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByUser returns the user's connected accounts.
func (s *Service) ListByUser(ctx context.Context, userID uint64) ([]Account, error) {
	var out []Account
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("platform asc, account_name asc").
		Find(&out).Error
	return out, err
}

// Disconnect deactivates an account. Rows are kept so old posts can
// still show which destination they went to.
func (s *Service) Disconnect(ctx context.Context, id, userID uint64) error {
	res := s.DB.WithContext(ctx).Model(&Account{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
