package publish

import "crosspost/internal/post"

// MediaRef is an opaque attachment reference handed to adapters. The
// bytes behind the URL belong to the media store.
type MediaRef struct {
	URL     string
	Kind    string
	AltText string
}

// Content is the normalized payload pushed to every destination of a
// post.
type Content struct {
	Text  string
	Link  string
	Media []MediaRef
}

func ContentFromPost(p *post.Post) Content {
	c := Content{Text: p.Content, Link: p.Link}
	for _, m := range p.Media {
		c.Media = append(c.Media, MediaRef{URL: m.URL, Kind: m.Kind, AltText: m.AltText})
	}
	return c
}
