package likes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orgball2608/wedding-gallery/internal/domain"
	apperrors "github.com/orgball2608/wedding-gallery/pkg/errors"
)

// Client talks to the gallery HTTP API.
type Client struct {
	baseURL       string
	operatorToken string
	http          *http.Client
}

var _ Liker = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithOperatorToken returns a copy that authenticates operator requests.
func (c *Client) WithOperatorToken(token string) *Client {
	cp := *c
	cp.operatorToken = token
	return &cp
}

type likeResult struct {
	Success bool   `json:"success"`
	Likes   int    `json:"likes"`
	Error   string `json:"error"`
}

func (c *Client) IncrementLike(ctx context.Context, mediaID string) (int, error) {
	endpoint := fmt.Sprintf("%s/api/media/%s/like", c.baseURL, url.PathEscape(mediaID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build like request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("like request: %w", err)
	}
	defer resp.Body.Close()

	// Error bodies may come from a proxy and need not be JSON.
	var result likeResult
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	reason := http.StatusText(resp.StatusCode)
	if decodeErr == nil && result.Error != "" {
		reason = result.Error
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return 0, apperrors.Wrap(apperrors.ErrNotFound, reason)
	case http.StatusTooManyRequests:
		return 0, apperrors.Wrap(apperrors.ErrTooManyRequests, reason)
	case http.StatusServiceUnavailable:
		return 0, apperrors.Wrap(apperrors.ErrServiceUnavailable, reason)
	default:
		return 0, fmt.Errorf("like rejected with status %d: %s", resp.StatusCode, reason)
	}

	if decodeErr != nil {
		return 0, fmt.Errorf("decode like response: %w", decodeErr)
	}
	if !result.Success {
		return 0, fmt.Errorf("like rejected: %s", reason)
	}
	return result.Likes, nil
}

func (c *Client) ListMedia(ctx context.Context, sort domain.SortOption, filter domain.TypeFilter) ([]domain.Media, error) {
	q := url.Values{}
	q.Set("sort", string(sort))
	q.Set("type", string(filter))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/media?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list media: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Media []domain.Media `json:"media"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode media list: %w", err)
	}
	return body.Media, nil
}

// CleanupStale asks the server to drop media whose files are gone.
func (c *Client) CleanupStale(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/media/cleanup", nil)
	if err != nil {
		return 0, fmt.Errorf("build cleanup request: %w", err)
	}
	if c.operatorToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.operatorToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("cleanup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("cleanup media: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Removed int64 `json:"removed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode cleanup response: %w", err)
	}
	return body.Removed, nil
}
