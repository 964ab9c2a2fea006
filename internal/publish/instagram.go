package publish

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"crosspost/internal/social"
)

// Instagram publishes through the business-account media API, which is
// a two-step flow: create a media container, then publish it. Instagram
// refuses posts without media.
type Instagram struct {
	graph graphClient
}

func NewInstagram(baseURL string, client *http.Client) *Instagram {
	return &Instagram{graph: newGraphClient(baseURL, client)}
}

func (ig *Instagram) Publish(ctx context.Context, account *social.Account, c Content) (string, error) {
	if account.Platform != social.PlatformInstagram {
		return "", errors.New("not an instagram account")
	}
	if len(c.Media) == 0 || c.Media[0].URL == "" {
		return "", errors.New("media is required for instagram posts")
	}

	// step 1: container
	vals := url.Values{}
	vals.Set("access_token", account.AccessToken)
	vals.Set("image_url", c.Media[0].URL)
	vals.Set("caption", c.Text)

	container, err := ig.graph.post(ctx, "/"+account.PlatformUserID+"/media", vals)
	if err != nil {
		return "", err
	}

	// step 2: publish the container
	vals = url.Values{}
	vals.Set("access_token", account.AccessToken)
	vals.Set("creation_id", container.ID)

	resp, err := ig.graph.post(ctx, "/"+account.PlatformUserID+"/media_publish", vals)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}
