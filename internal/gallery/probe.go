package gallery

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

// Prober checks whether a media file can still be fetched.
type Prober interface {
	Reachable(ctx context.Context, url string) bool
}

// HTTPProber issues a HEAD request; only 2xx answers count as reachable.
type HTTPProber struct {
	client *http.Client
	log    logger.Logger
}

var _ Prober = (*HTTPProber)(nil)

func NewHTTPProber(timeout time.Duration, log logger.Logger) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{Timeout: timeout},
		log:    log.WithComponent("MediaProber"),
	}
}

func (p *HTTPProber) Reachable(ctx context.Context, url string) bool {
	if strings.TrimSpace(url) == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		p.log.Warn("Invalid media URL", "url", url, "error", err)
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("Error checking media URL", "url", url, "error", err)
		return false
	}
	resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
