package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"precis/internal/paper"
)

// UserAgent identifies feed and download requests. The listing endpoint
// rejects clients that do not present a browser user agent.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

var paperIDPattern = regexp.MustCompile(`/abs/(\d+\.\d+)`)

// Config captures the feed settings.
type Config struct {
	BaseURL   string
	Listing   string
	MaxPapers int
}

// Client fetches the recent listing for one arXiv category.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a feed client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			BaseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Listing:   strings.TrimSpace(cfg.Listing),
			MaxPapers: cfg.MaxPapers,
		},
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://arxiv.org"
	}
	if client.cfg.Listing == "" {
		client.cfg.Listing = "cs.AI"
	}
	if client.cfg.MaxPapers <= 0 {
		client.cfg.MaxPapers = 100
	}
	return client
}

// Fetch returns the de-duplicated recent listing, capped at MaxPapers
// and ordered as the site lists it. The first page is mandatory and its
// failure fails the whole run; the wider pagination pass is best-effort
// and can only add papers.
func (c *Client) Fetch(ctx context.Context) ([]paper.Paper, error) {
	papers, err := c.fetchPage(ctx, c.listingURL(""))
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	papers = dedupe(papers, c.cfg.MaxPapers)
	if len(papers) >= c.cfg.MaxPapers {
		return papers, nil
	}

	query := fmt.Sprintf("?skip=0&show=%d", c.cfg.MaxPapers)
	widened, err := c.fetchPage(ctx, c.listingURL(query))
	if err != nil {
		// The recent page already produced candidates; a failed
		// widening pass only means a shorter run.
		return papers, nil
	}
	return dedupe(append(papers, widened...), c.cfg.MaxPapers), nil
}

func (c *Client) listingURL(query string) string {
	return fmt.Sprintf("%s/list/%s/recent%s", c.cfg.BaseURL, c.cfg.Listing, query)
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]paper.Paper, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned http %d", resp.StatusCode)
	}
	return c.parseListing(resp.Body)
}

// parseListing walks the dt/dd pairs of the listing markup. The dt
// carries the /abs/ link with the paper id, the matching dd carries the
// title div. Entries without a recognizable id are skipped.
func (c *Client) parseListing(r io.Reader) ([]paper.Paper, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	dts := doc.Find("dt")
	dds := doc.Find("dd")
	count := dts.Length()
	if dds.Length() < count {
		count = dds.Length()
	}

	papers := make([]paper.Paper, 0, count)
	for i := 0; i < count; i++ {
		id := paperID(dts.Eq(i))
		if id == "" {
			continue
		}
		title := paperTitle(dds.Eq(i))
		if title == "" {
			title = "Paper-" + id
		}
		papers = append(papers, paper.Paper{
			ID:     id,
			Title:  title,
			PDFURL: fmt.Sprintf("%s/pdf/%s.pdf", c.cfg.BaseURL, id),
		})
	}
	return papers, nil
}

func paperID(dt *goquery.Selection) string {
	id := ""
	dt.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		if m := paperIDPattern.FindStringSubmatch(href); m != nil {
			id = m[1]
			return false
		}
		return true
	})
	return id
}

func paperTitle(dd *goquery.Selection) string {
	title := dd.Find("div.list-title").First().Text()
	title = strings.ReplaceAll(title, "Title:", "")
	return strings.TrimSpace(title)
}

// dedupe drops repeated ids while preserving first-seen order, cutting
// the sequence off at limit.
func dedupe(papers []paper.Paper, limit int) []paper.Paper {
	result := make([]paper.Paper, 0, len(papers))
	seen := make(map[string]struct{}, len(papers))
	for _, p := range papers {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		result = append(result, p)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}
