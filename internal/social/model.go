package social

import "time"

// Supported platform kinds.
const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
)

// Account is a connected external account: the credential one target
// slot publishes through. The OAuth flow that fills it in lives in the
// web layer; publishing only reads it.
type Account struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	Platform       string `gorm:"not null"` // facebook/instagram
	PlatformUserID string `gorm:"not null"` // page id or IG business account id
	AccountName    string `gorm:"not null"`

	AccessToken string     `gorm:"type:text;not null"`
	TokenExpiry *time.Time

	IsActive bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Account) TableName() string { return "social_accounts" }
