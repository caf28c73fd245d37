package wikimedia

import (
	"testing"
)

// TestThumbURL verifies the Commons thumbnail URL rewrite
func TestThumbURL(t *testing.T) {
	testCases := []struct {
		name  string
		url   string
		width int
		want  string
	}{
		{
			name:  "full resolution url",
			url:   "https://upload.wikimedia.org/wikipedia/commons/a/a9/Sunset_over_the_bay.jpg",
			width: 1280,
			want:  "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a9/Sunset_over_the_bay.jpg/1280px-Sunset_over_the_bay.jpg",
		},
		{
			name:  "hero width",
			url:   "https://upload.wikimedia.org/wikipedia/commons/3/3f/Alpine_lake.png",
			width: 2000,
			want:  "https://upload.wikimedia.org/wikipedia/commons/thumb/3/3f/Alpine_lake.png/2000px-Alpine_lake.png",
		},
		{
			name:  "already a thumbnail at requested width",
			url:   "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a9/Sunset_over_the_bay.jpg/1280px-Sunset_over_the_bay.jpg",
			width: 1280,
			want:  "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a9/Sunset_over_the_bay.jpg/1280px-Sunset_over_the_bay.jpg",
		},
		{
			name:  "thumbnail at another width is left alone",
			url:   "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a9/Sunset_over_the_bay.jpg/640px-Sunset_over_the_bay.jpg",
			width: 1280,
			want:  "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a9/Sunset_over_the_bay.jpg/640px-Sunset_over_the_bay.jpg",
		},
		{
			name:  "non-commons url passes through",
			url:   "https://example.com/images/photo.jpg",
			width: 1280,
			want:  "https://example.com/images/photo.jpg",
		},
		{
			name:  "filename with parentheses and spaces encoded",
			url:   "https://upload.wikimedia.org/wikipedia/commons/c/c4/Berlin_%28Mitte%29_at_dusk.jpg",
			width: 1280,
			want:  "https://upload.wikimedia.org/wikipedia/commons/thumb/c/c4/Berlin_%28Mitte%29_at_dusk.jpg/1280px-Berlin_%28Mitte%29_at_dusk.jpg",
		},
		{
			name:  "zero width passes through",
			url:   "https://upload.wikimedia.org/wikipedia/commons/a/a9/Sunset_over_the_bay.jpg",
			width: 0,
			want:  "https://upload.wikimedia.org/wikipedia/commons/a/a9/Sunset_over_the_bay.jpg",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ThumbURL(tc.url, tc.width)
			if got != tc.want {
				t.Errorf("ThumbURL(%q, %d) = %q, want %q", tc.url, tc.width, got, tc.want)
			}
		})
	}
}
