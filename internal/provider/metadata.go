package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxMetadataBody caps how much of a remote page is read while looking for
// meta tags, which always live in <head>.
const maxMetadataBody = 1 << 20 // 1 MiB

// MetadataFetcher fetches OpenGraph metadata for external links. It is glue
// around the catalog: fetch failures surface to the caller and never touch
// catalog state.
type MetadataFetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewMetadataFetcher creates a metadata fetcher with a bounded timeout.
func NewMetadataFetcher(logger *slog.Logger) *MetadataFetcher {
	return &MetadataFetcher{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// PageMetadata holds the extracted OpenGraph fields. Empty fields are
// omitted from the response.
type PageMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url"`
}

// Fetch retrieves the page and extracts og:title, og:description and
// og:image, falling back to the <title> element and description meta tag.
func (f *MetadataFetcher) Fetch(ctx context.Context, rawURL string) (*PageMetadata, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("unsupported url: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "SafeboxBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	meta := parseMetadata(io.LimitReader(resp.Body, maxMetadataBody))
	meta.URL = rawURL
	return meta, nil
}

func parseMetadata(r io.Reader) *PageMetadata {
	meta := &PageMetadata{}
	var pageTitle string

	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if meta.Title == "" {
				meta.Title = pageTitle
			}
			return meta

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "meta":
				key, content := metaAttrs(tok)
				switch key {
				case "og:title":
					meta.Title = content
				case "og:description":
					meta.Description = content
				case "description":
					if meta.Description == "" {
						meta.Description = content
					}
				case "og:image":
					meta.Image = content
				}
			case "title":
				if z.Next() == html.TextToken {
					pageTitle = strings.TrimSpace(string(z.Text()))
				}
			case "body":
				// Meta tags live in <head>; stop early.
				if meta.Title == "" {
					meta.Title = pageTitle
				}
				return meta
			}
		}
	}
}

func metaAttrs(tok html.Token) (key, content string) {
	for _, attr := range tok.Attr {
		switch attr.Key {
		case "property", "name":
			key = attr.Val
		case "content":
			content = attr.Val
		}
	}
	return key, content
}
