package publish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspost/internal/social"
)

func fbAccount() *social.Account {
	return &social.Account{
		ID:             10,
		UserID:         1,
		Platform:       social.PlatformFacebook,
		PlatformUserID: "page123",
		AccessToken:    "tok",
	}
}

func TestFacebookTextAndLinkPost(t *testing.T) {
	var gotPath string
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"page123_456"}`))
	}))
	defer srv.Close()

	fb := NewFacebook(srv.URL, srv.Client())
	id, err := fb.Publish(context.Background(), fbAccount(), Content{Text: "hi", Link: "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, "page123_456", id)
	assert.Equal(t, "/page123/feed", gotPath)
	assert.Equal(t, "hi", gotForm["message"][0])
	assert.Equal(t, "https://example.com", gotForm["link"][0])
	assert.Equal(t, "tok", gotForm["access_token"][0])
}

func TestFacebookSingleImageUsesPhotosEndpoint(t *testing.T) {
	var gotPath string
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"photo1","post_id":"page123_789"}`))
	}))
	defer srv.Close()

	fb := NewFacebook(srv.URL, srv.Client())
	id, err := fb.Publish(context.Background(), fbAccount(), Content{
		Text:  "look",
		Media: []MediaRef{{URL: "https://cdn.example.com/a.jpg", Kind: "image"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "page123_789", id)
	assert.Equal(t, "/page123/photos", gotPath)
	assert.Equal(t, "https://cdn.example.com/a.jpg", gotForm["url"][0])
	assert.Equal(t, "look", gotForm["caption"][0])
	assert.Empty(t, gotForm["message"])
}

func TestFacebookGraphErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`))
	}))
	defer srv.Close()

	fb := NewFacebook(srv.URL, srv.Client())
	_, err := fb.Publish(context.Background(), fbAccount(), Content{Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestFacebookRejectsWrongPlatform(t *testing.T) {
	fb := NewFacebook("http://unused", nil)
	acct := fbAccount()
	acct.Platform = social.PlatformInstagram
	_, err := fb.Publish(context.Background(), acct, Content{Text: "hi"})
	assert.Error(t, err)
}

func TestFacebookRejectsEmptyContent(t *testing.T) {
	fb := NewFacebook("http://unused", nil)
	_, err := fb.Publish(context.Background(), fbAccount(), Content{})
	assert.Error(t, err)
}
