package wikimedia

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanHTML strips markup tags and decodes the common HTML entities found in
// Commons extmetadata fields. Lightweight on purpose: the fields contain at
// most simple formatting, not full documents.
func CleanHTML(html string) string {
	if html == "" {
		return ""
	}
	withoutTags := htmlTagPattern.ReplaceAllString(html, "")
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	return strings.TrimSpace(replacer.Replace(withoutTags))
}

// ParseCategories splits the pipe-delimited category string from
// extmetadata into a trimmed list.
func ParseCategories(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	categories := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}
	return categories
}

// ExtractMetadata maps a Commons imageinfo record into an image draft.
// Attribution prefers Artist, then Author, then Credit; HTML-bearing fields
// are sanitized.
func ExtractMetadata(filename string, info *ImageInfo) *domain.Image {
	meta := info.ExtMetadata

	user := meta["Artist"].Value
	if user == "" {
		user = meta["Author"].Value
	}
	if user == "" {
		user = meta["Credit"].Value
	}
	if user == "" {
		user = "Unknown"
	}
	attribution := CleanHTML(user)

	var takenAt *string
	if dt := meta["DateTime"].Value; dt != "" {
		takenAt = &dt
	}

	return &domain.Image{
		Title:       filename,
		URL:         info.URL,
		Width:       info.Width,
		Height:      info.Height,
		Mime:        info.Mime,
		AddedAt:     time.Now().UTC(),
		TakenAt:     takenAt,
		Source:      "Wikimedia Commons",
		Attribution: attribution,
		LicenseName: meta["LicenseShortName"].Value,
		LicenseURL:  meta["LicenseUrl"].Value,
		Description: CleanHTML(meta["ImageDescription"].Value),
		Categories:  ParseCategories(meta["Categories"].Value),
		Owner:       attribution,
		InfoURL:     "https://commons.wikimedia.org/wiki/File:" + url.QueryEscape(filename),
	}
}
