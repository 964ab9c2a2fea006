package post

import (
	"regexp"
	"strings"
)

var hashtagRe = regexp.MustCompile(`#([a-zA-Z0-9_]{1,32})`)

// maxTags caps how many hashtags one post contributes to its tags
// column.
const maxTags = 20

// ExtractTags pulls the distinct hashtags out of a post's content,
// lowercased, in order of first appearance. They back the tag filter
// on post listing; the content itself goes out to the platforms
// untouched.
func ExtractTags(content string) []string {
	matches := hashtagRe.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	tags := make([]string, 0, len(matches))

	for _, m := range matches {
		if len(m) < 2 {
			continue
		}
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)

		if len(tags) >= maxTags {
			break
		}
	}

	return tags
}
