package wikimedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchImageInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("prop") != "imageinfo" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("titles") != "File:Sunset.jpg" {
			t.Errorf("titles = %q", q.Get("titles"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"query": {
				"pages": {
					"12345": {
						"imageinfo": [{
							"url": "https://upload.wikimedia.org/wikipedia/commons/a/a9/Sunset.jpg",
							"width": 4000,
							"height": 3000,
							"mime": "image/jpeg",
							"extmetadata": {
								"Artist": {"value": "Jane Roe"},
								"Categories": {"value": "Sunsets|Coasts"}
							}
						}]
					}
				}
			}
		}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&ClientConfig{APIEndpoint: srv.URL})

	info, err := client.FetchImageInfo(context.Background(), "Sunset.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info == nil {
		t.Fatal("expected imageinfo")
	}
	if info.URL != "https://upload.wikimedia.org/wikipedia/commons/a/a9/Sunset.jpg" {
		t.Errorf("url = %q", info.URL)
	}
	if info.Width != 4000 || info.Height != 3000 {
		t.Errorf("size = %dx%d", info.Width, info.Height)
	}
	if info.ExtMetadata["Artist"].Value != "Jane Roe" {
		t.Errorf("artist = %q", info.ExtMetadata["Artist"].Value)
	}
}

// Commons reports an unknown file as a page with no imageinfo entries
func TestFetchImageInfoMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query":{"pages":{"-1":{"missing":""}}}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&ClientConfig{APIEndpoint: srv.URL})

	info, err := client.FetchImageInfo(context.Background(), "Nope.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info != nil {
		t.Errorf("expected nil info for a missing file, got %+v", info)
	}
}

func TestFetchImageInfoServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&ClientConfig{APIEndpoint: srv.URL})

	if _, err := client.FetchImageInfo(context.Background(), "Sunset.jpg"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
