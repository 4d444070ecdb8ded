package archive

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"news-sentiment-index/internal/logger"
	"news-sentiment-index/internal/types"
)

// Scraper is a fallback ArchiveSource that crawls monthly sitemap-style
// listing pages when no API access is available. Headlines without a
// parseable per-day anchor are dated to the listing day.
type Scraper struct {
	baseURL   string
	selectors ScraperSelectors
	timeout   time.Duration
}

// ScraperSelectors defines CSS selectors for extracting headline data from
// a month listing page.
type ScraperSelectors struct {
	DaySection string // container per calendar day
	DayDate    string // element/attr holding the day's date (YYYY-MM-DD)
	Headline   string // headline anchors within a day section
}

// DefaultScraperSelectors matches the common sitemap layout of newspaper
// archive pages: one section per day with an id date and plain links.
func DefaultScraperSelectors() ScraperSelectors {
	return ScraperSelectors{
		DaySection: "div.archive-day",
		DayDate:    "h2.archive-date",
		Headline:   "ul li a",
	}
}

func NewScraper(baseURL string, timeout time.Duration) *Scraper {
	return &Scraper{
		baseURL:   baseURL,
		selectors: DefaultScraperSelectors(),
		timeout:   timeout,
	}
}

// FetchMonth scrapes the listing page for the given month.
func (s *Scraper) FetchMonth(ctx context.Context, month types.Month) ([]types.Headline, error) {
	pageURL := fmt.Sprintf("%s/sitemap/%04d/%02d/", strings.TrimRight(s.baseURL, "/"), month.Year, int(month.Month))
	logger.Info(ctx, "Scraping archive month", "month", month.String(), "url", pageURL)

	c := colly.NewCollector(
		colly.AllowedDomains(allowedHosts(s.baseURL)...),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	var headlines []types.Headline
	c.OnHTML(s.selectors.DaySection, func(e *colly.HTMLElement) {
		day, err := s.dayOf(e.DOM, month)
		if err != nil {
			return
		}
		e.DOM.Find(s.selectors.Headline).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if text == "" {
				return
			}
			headlines = append(headlines, types.Headline{Date: day, Text: text})
		})
	})

	var fetchErr error
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, &types.TransportError{Month: month, Err: err}
	}
	c.Wait()
	if fetchErr != nil {
		return nil, &types.TransportError{Month: month, Err: fetchErr}
	}

	logger.Info(ctx, "Archive month scraped", "month", month.String(), "headlines", len(headlines))
	return headlines, nil
}

// dayOf extracts the calendar date of a day section; sections that belong to
// a different month are rejected.
func (s *Scraper) dayOf(sel *goquery.Selection, month types.Month) (time.Time, error) {
	raw := strings.TrimSpace(sel.Find(s.selectors.DayDate).First().Text())
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable day header %q: %w", raw, err)
	}
	if types.MonthOf(day) != month {
		return time.Time{}, fmt.Errorf("day %s outside month %s", raw, month)
	}
	return day, nil
}

// allowedHosts returns the archive host with and without its port, so the
// collector accepts the page whichever form it compares request URLs against.
func allowedHosts(baseURL string) []string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	if u.Host == u.Hostname() {
		return []string{u.Host}
	}
	return []string{u.Hostname(), u.Host}
}
