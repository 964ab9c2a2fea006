package db

import (
	"fmt"

	"crosspost/internal/auth"
	"crosspost/internal/post"
	"crosspost/internal/social"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&post.Post{},
		&post.Target{},
		&post.Media{},
		&social.Account{},
		&auth.User{},
	); err != nil {
		return err
	}

	// One connected account per (user, platform, platform user)
	if err := gdb.Exec(`create unique index if not exists uq_accounts_user_platform on social_accounts(user_id, platform, platform_user_id);`).Error; err != nil {
		return err
	}

	// Tag filter (GIN for text[])
	if err := gdb.Exec(`create index if not exists idx_posts_tags on posts using gin (tags);`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_posts_due on posts(status, scheduled_at);`,
		`create index if not exists idx_posts_user_status on posts(user_id, status);`,
		`create index if not exists idx_targets_post on post_targets(post_id);`,
		`create index if not exists idx_media_post_order on post_media(post_id, order_index);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
