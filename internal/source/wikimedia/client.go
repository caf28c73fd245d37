package wikimedia

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ImageInfo is the imageinfo block returned by the Commons API for one file.
type ImageInfo struct {
	URL         string                 `json:"url"`
	Width       int                    `json:"width"`
	Height      int                    `json:"height"`
	Mime        string                 `json:"mime"`
	ExtMetadata map[string]MetadataRaw `json:"extmetadata"`
}

// MetadataRaw is one extmetadata entry; only the value is used.
type MetadataRaw struct {
	Value string `json:"value"`
}

type queryResponse struct {
	Query struct {
		Pages map[string]struct {
			ImageInfo []ImageInfo `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// Client fetches file metadata from the Wikimedia Commons API.
type Client struct {
	client   *resty.Client
	endpoint string
}

// ClientConfig holds configuration for the Commons client.
type ClientConfig struct {
	APIEndpoint string
}

// NewClient creates a new Commons metadata client.
func NewClient(cfg *ClientConfig) *Client {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Accept", "application/json")

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = "https://commons.wikimedia.org/w/api.php"
	}

	return &Client{
		client:   client,
		endpoint: endpoint,
	}
}

// FetchImageInfo retrieves the imageinfo record for a Commons filename.
// A nil result with nil error means the repository has no record for the file.
func (c *Client) FetchImageInfo(ctx context.Context, filename string) (*ImageInfo, error) {
	var resp queryResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action": "query",
			"titles": "File:" + filename,
			"prop":   "imageinfo",
			"iiprop": "url|size|dimensions|mime|extmetadata",
			"format": "json",
		}).
		SetResult(&resp).
		Get(c.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call Commons API: %w", err)
	}
	if httpResp.StatusCode() != 200 {
		return nil, fmt.Errorf("Commons API error: status %d", httpResp.StatusCode())
	}

	for _, page := range resp.Query.Pages {
		if len(page.ImageInfo) > 0 {
			info := page.ImageInfo[0]
			return &info, nil
		}
	}
	return nil, nil
}
