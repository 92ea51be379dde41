package sponsorblock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediapull/internal/config"
	"mediapull/internal/services"
)

const (
	// DefaultBaseURL is the public SponsorBlock instance.
	DefaultBaseURL = "https://sponsor.ajay.app"
	// DefaultTimeout bounds one segment lookup.
	DefaultTimeout = 10 * time.Second
	// HashPrefixLength is how many hex digits of sha256(videoID) are sent.
	HashPrefixLength = 4

	userAgent     = "mediapull/1.0"
	maxBodyBytes  = 4 << 20
	skipSegsRoute = "/api/skipSegments/"
)

// HTTPDoer describes the HTTP client used for API calls.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Segment is a time range to remove, in seconds.
type Segment struct {
	Start    float64
	End      float64
	Category string
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

type apiEntry struct {
	VideoID  string       `json:"videoID"`
	Segments []apiSegment `json:"segments"`
}

type apiSegment struct {
	Segment  []float64 `json:"segment"`
	Category string    `json:"category"`
}

// Client queries the SponsorBlock skip-segment API by hash prefix, so the
// server never learns the exact video id.
type Client struct {
	baseURL    string
	categories []string
	timeout    time.Duration
	http       HTTPDoer
}

// NewClient builds a client. Empty categories use the default set; a nil
// doer uses http.DefaultClient.
func NewClient(baseURL string, categories []string, timeout time.Duration, doer HTTPDoer) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if len(categories) == 0 {
		categories = config.DefaultSponsorCategories()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		categories: append([]string(nil), categories...),
		timeout:    timeout,
		http:       doer,
	}
}

// NewConfiguredClient builds a client from the sponsorblock config section.
func NewConfiguredClient(cfg config.SponsorBlock) *Client {
	return NewClient(cfg.APIURL, cfg.Categories, config.Seconds(cfg.RequestTimeout), nil)
}

// HashPrefix returns the leading hex digits of sha256(videoID).
func HashPrefix(videoID string) string {
	sum := sha256.Sum256([]byte(videoID))
	return hex.EncodeToString(sum[:])[:HashPrefixLength]
}

// RequestURL renders the lookup URL for a video id.
func (c *Client) RequestURL(videoID string) string {
	query := url.Values{}
	for _, cat := range c.categories {
		query.Add("category", cat)
	}
	return c.baseURL + skipSegsRoute + HashPrefix(videoID) + "?" + query.Encode()
}

// Segments returns the skip segments recorded for videoID. A 404 means the
// hash prefix has no submissions and yields no segments.
func (c *Client) Segments(ctx context.Context, videoID string) ([]Segment, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, services.Wrap(services.ErrValidation, "sponsorblock", "lookup", "video id required", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(videoID), nil)
	if err != nil {
		return nil, fmt.Errorf("build sponsorblock request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "sponsorblock", "lookup", "api unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrExternalTool, "sponsorblock", "lookup", fmt.Sprintf("api returned %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "sponsorblock", "lookup", "read response", err)
	}
	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "sponsorblock", "lookup", "decode response", err)
	}

	var segments []Segment
	for _, entry := range entries {
		if entry.VideoID != videoID {
			continue
		}
		for _, seg := range entry.Segments {
			if len(seg.Segment) < 2 {
				continue
			}
			category := seg.Category
			if category == "" {
				category = "sponsor"
			}
			segments = append(segments, Segment{Start: seg.Segment[0], End: seg.Segment[1], Category: category})
		}
	}
	return segments, nil
}
