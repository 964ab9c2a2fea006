package post

import (
	"time"

	"github.com/lib/pq"
)

// Post statuses. published/failed are terminal: the scanner never picks
// them up again. publishing is the interim claim status held while the
// orchestrator is fanning out to targets.
const (
	StatusDraft      = "draft"
	StatusScheduled  = "scheduled"
	StatusPublishing = "publishing"
	StatusPublished  = "published"
	StatusFailed     = "failed"
)

// Target statuses.
const (
	TargetPending = "pending"
	TargetSent    = "sent"
	TargetFailed  = "failed"
)

// Media kinds.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaGif   = "gif"
)

// Post is a piece of content plus the destinations it goes to.
// Status is derived from target statuses, never set independently.
type Post struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	Content string `gorm:"type:text;not null;default:''"`
	Link    string `gorm:"type:text;not null;default:''"`

	Tags pq.StringArray `gorm:"type:text[];default:'{}'"`

	Status      string     `gorm:"index;not null;default:'draft'"`
	ScheduledAt *time.Time `gorm:"index"`
	CompletedAt *time.Time

	// ClaimedBy records which scanner instance (or manual trigger) took
	// the post from scheduled to publishing.
	ClaimedBy *string `gorm:"type:text"`

	Targets []Target `gorm:"constraint:OnDelete:CASCADE"`
	Media   []Media  `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Target is one destination slot of a post. Each target is mutated
// exactly once per publish attempt: either to sent or to failed.
type Target struct {
	ID              uint64 `gorm:"primaryKey"`
	PostID          uint64 `gorm:"index;not null"`
	SocialAccountID uint64 `gorm:"not null"`

	Status       string     `gorm:"not null;default:'pending'"`
	ExternalID   *string    `gorm:"type:text"`
	ErrorMessage *string    `gorm:"type:text"`
	SentAt       *time.Time
}

func (Target) TableName() string { return "post_targets" }

// Media is an opaque attachment reference. File bytes live elsewhere.
type Media struct {
	ID         uint64 `gorm:"primaryKey"`
	PostID     uint64 `gorm:"index;not null"`
	URL        string `gorm:"type:text;not null"`
	Kind       string `gorm:"not null"` // image/video/gif
	AltText    string `gorm:"type:text;not null;default:''"`
	OrderIndex int    `gorm:"not null;default:0"`
}

func (Media) TableName() string { return "post_media" }

// Terminal reports whether a post status admits no further automatic
// transition.
func Terminal(status string) bool {
	return status == StatusPublished || status == StatusFailed
}
