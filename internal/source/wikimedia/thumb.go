package wikimedia

import (
	"fmt"
	"regexp"
	"strings"
)

// commonsPathPattern matches the two-level hash directory segment and
// filename of a full-resolution Commons upload path.
var commonsPathPattern = regexp.MustCompile(`^(.*)/wikipedia/commons/([a-zA-Z0-9])/([a-zA-Z0-9]{2})/(.+)$`)

// ThumbURL rewrites a full-resolution Commons upload URL to its thumbnail
// form at the given pixel width. URLs already in thumbnail form at that
// width, and URLs that do not match the Commons upload layout, pass through
// unchanged.
func ThumbURL(rawURL string, width int) string {
	if width <= 0 {
		return rawURL
	}

	sizePrefix := fmt.Sprintf("/%dpx-", width)
	if strings.Contains(rawURL, "/wikipedia/commons/thumb/") && strings.Contains(rawURL, sizePrefix) {
		return rawURL
	}
	if strings.Contains(rawURL, "/wikipedia/commons/thumb/") {
		// Thumbnail at another width; leave it alone rather than nesting paths.
		return rawURL
	}

	m := commonsPathPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return rawURL
	}
	prefix, first, second, filename := m[1], m[2], m[3], m[4]
	return fmt.Sprintf("%s/wikipedia/commons/thumb/%s/%s/%s/%dpx-%s",
		prefix, first, second, filename, width, filename)
}
