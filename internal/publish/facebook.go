package publish

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"crosspost/internal/social"
)

// Facebook publishes to a page feed. Text and link posts go to the feed
// endpoint; a single image attachment goes to the photos endpoint with
// the text as caption.
type Facebook struct {
	graph graphClient
}

func NewFacebook(baseURL string, client *http.Client) *Facebook {
	return &Facebook{graph: newGraphClient(baseURL, client)}
}

func (f *Facebook) Publish(ctx context.Context, account *social.Account, c Content) (string, error) {
	if account.Platform != social.PlatformFacebook {
		return "", errors.New("not a facebook account")
	}
	if c.Text == "" && c.Link == "" && len(c.Media) == 0 {
		return "", errors.New("empty post")
	}

	vals := url.Values{}
	vals.Set("access_token", account.AccessToken)

	path := "/" + account.PlatformUserID + "/feed"
	if c.Text != "" {
		vals.Set("message", c.Text)
	}
	if c.Link != "" {
		vals.Set("link", c.Link)
	}

	// Exactly one image becomes a photo post. Anything beyond that
	// (albums, video upload) goes out as a plain feed post for now.
	if len(c.Media) == 1 && strings.HasPrefix(c.Media[0].Kind, "image") {
		path = "/" + account.PlatformUserID + "/photos"
		vals.Del("message")
		vals.Del("link")
		vals.Set("url", c.Media[0].URL)
		vals.Set("caption", c.Text)
	}

	resp, err := f.graph.post(ctx, path, vals)
	if err != nil {
		return "", err
	}
	if resp.PostID != "" {
		return resp.PostID, nil
	}
	return resp.ID, nil
}
