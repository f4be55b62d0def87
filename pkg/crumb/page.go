package crumb

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/Angki/bandcamp-codes-verificator/pkg/logging"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultPageURL is the authenticated page carrying the crumb.
const DefaultPageURL = "https://bandcamp.com/yum"

// Crumb extraction strategies, tried in order. The page embeds the crumb
// either as a data attribute or inside inline script/page blob JSON, which
// may be HTML-escaped.
var (
	crumbJSONPattern    = regexp.MustCompile(`["']crumb["']\s*:\s*["']([^"']+)["']`)
	crumbEscapedPattern = regexp.MustCompile(`&quot;crumb&quot;:&quot;([^&]+)&quot;`)
)

// PageConfig holds page source configuration.
type PageConfig struct {
	// PageURL is the page to fetch (default: DefaultPageURL).
	PageURL string

	// UserAgent sent with the page request.
	UserAgent string

	// Timeout bounds the page fetch.
	Timeout time.Duration

	// Cookie material; the page only carries a crumb for a signed-in
	// session. Identity is optional.
	ClientID string
	Session  string
	Identity string
}

// PageSource fetches the authenticated page and extracts the crumb.
// The first successful extraction is cached; a run never refreshes its
// crumb mid-flight.
type PageSource struct {
	client  *resty.Client
	pageURL string
	cached  string
	logger  zerolog.Logger
}

// NewPageSource creates a page-scraping crumb source.
func NewPageSource(cfg PageConfig) (*PageSource, error) {
	if cfg.ClientID == "" || cfg.Session == "" {
		return nil, fmt.Errorf("client id and session cookies are required")
	}
	if cfg.PageURL == "" {
		cfg.PageURL = DefaultPageURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	client.SetCookie(&http.Cookie{Name: "client_id", Value: cfg.ClientID})
	client.SetCookie(&http.Cookie{Name: "session", Value: cfg.Session})
	client.SetCookie(&http.Cookie{Name: "js_logged_in", Value: "1"})
	if cfg.Identity != "" {
		client.SetCookie(&http.Cookie{Name: "identity", Value: cfg.Identity})
	}

	return &PageSource{
		client:  client,
		pageURL: cfg.PageURL,
		logger:  logging.NewLogger("crumb-source"),
	}, nil
}

// Crumb fetches the page and extracts the crumb, caching the result.
func (p *PageSource) Crumb(ctx context.Context) (string, error) {
	if p.cached != "" {
		return p.cached, nil
	}

	res, err := p.client.R().SetContext(ctx).Get(p.pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch crumb page: %w", err)
	}
	if res.StatusCode() != 200 {
		return "", fmt.Errorf("fetch crumb page: HTTP %d", res.StatusCode())
	}

	crumb, err := extract(res.Body())
	if err != nil {
		p.logger.Error().Err(err).Str("url", p.pageURL).Msg("Crumb extraction failed")
		return "", err
	}

	p.logger.Info().Msg("Crumb extracted from page")
	p.cached = crumb
	return crumb, nil
}

// extract tries each known crumb location in the page markup.
func extract(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse crumb page: %w", err)
	}

	if crumb, ok := doc.Find("[data-crumb]").First().Attr("data-crumb"); ok && crumb != "" {
		return crumb, nil
	}

	found := ""
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := crumbJSONPattern.FindStringSubmatch(s.Text()); m != nil {
			found = m[1]
			return false
		}
		return true
	})
	if found != "" {
		return found, nil
	}

	if m := crumbEscapedPattern.FindSubmatch(html); m != nil {
		return string(m[1]), nil
	}
	if m := crumbJSONPattern.FindSubmatch(html); m != nil {
		return string(m[1]), nil
	}

	return "", ErrNotFound
}
