package hackathon

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	DevpostURL       = "https://devpost.com/hackathons"
	defaultUserAgent = "spigell/hackmatch"
	scrapedCriteria  = "Check hackathon page for details"
	scrapedPrize     = "No prize specified"
)

// Scraper reads hackathon listings from a devpost-like HTML page.
type Scraper struct {
	HTTPClient *http.Client
	URL        string
	UserAgent  string
	logger     *zap.Logger
}

func NewScraper(logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		URL:       DevpostURL,
		UserAgent: defaultUserAgent,
		logger:    logger,
	}
}

// Scrape fetches the listing page and parses every challenge on it.
// Listings without a title are skipped.
func (s *Scraper) Scrape(ctx context.Context) (*Hackathons, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "text/html")

	s.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	hackathons := &Hackathons{}
	doc.Find("div.challenge-listing").Each(func(i int, sel *goquery.Selection) {
		h := parseListing(sel)
		if h == nil {
			s.logger.Warn("skipping listing without title", zap.Int("position", i))
			return
		}
		hackathons.Items = append(hackathons.Items, h)
	})

	s.logger.Info("scraped hackathons", zap.Int("count", hackathons.Len()), zap.String("url", s.URL))

	return hackathons, nil
}

func parseListing(sel *goquery.Selection) *Hackathon {
	title := text(sel.Find("h3.challenge-title").First())
	if title == "" {
		return nil
	}

	h := &Hackathon{
		Title:        title,
		Description:  text(sel.Find("p.challenge-description").First()),
		Requirements: []string{},
		Prize:        text(sel.Find("div.prizes").First()),
		Criteria:     scrapedCriteria,
		Deadline:     text(sel.Find("div.deadline").First()),
		Keywords:     splitList(text(sel.Find("div.themes").First())),
	}

	sel.Find("div.requirements li").Each(func(_ int, li *goquery.Selection) {
		if req := text(li); req != "" {
			h.Requirements = append(h.Requirements, req)
		}
	})

	if href, ok := sel.Find("a").First().Attr("href"); ok {
		h.URL = strings.TrimSpace(href)
	}

	if h.Prize == "" {
		h.Prize = scrapedPrize
	}
	applyDefaults(h)

	return h
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
