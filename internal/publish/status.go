package publish

import (
	"errors"

	"crosspost/internal/post"
)

// DeriveStatus reduces target outcomes to the post status. All sent
// means published, all failed means failed, a mix still counts as
// published: partial delivery is overall success, and the per-target
// statuses carry the detail. A target left pending means the fan-out
// loop skipped a slot, which must never happen.
func DeriveStatus(targets []post.Target) (string, error) {
	if len(targets) == 0 {
		return "", errors.New("post has no targets")
	}

	failed := 0
	for _, t := range targets {
		switch t.Status {
		case post.TargetSent:
		case post.TargetFailed:
			failed++
		default:
			return "", errors.New("target left pending after fan-out")
		}
	}

	if failed == len(targets) {
		return post.StatusFailed, nil
	}
	return post.StatusPublished, nil
}
