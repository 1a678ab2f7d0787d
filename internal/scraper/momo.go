package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/maltedev/product-compare/internal/models"
	"github.com/maltedev/product-compare/internal/ratelimit"
)

// PageFetcher returns the rendered HTML of a page; *browser.Browser
// implements it.
type PageFetcher interface {
	FetchHTML(ctx context.Context, url string, waitFor []string, maxRetries int) (string, error)
}

// momo lists 30 items per full page.
const momoFullPage = 30

type MomoScraper struct {
	fetcher PageFetcher
	limiter *ratelimit.AdaptiveRateLimiter
	opts    Options
	logger  *slog.Logger
}

func NewMomoScraper(fetcher PageFetcher, limiter *ratelimit.AdaptiveRateLimiter, opts Options, logger *slog.Logger) *MomoScraper {
	return &MomoScraper{
		fetcher: fetcher,
		limiter: limiter,
		opts:    opts,
		logger:  logger.With("component", "momo_scraper"),
	}
}

func (s *MomoScraper) Platform() models.Platform {
	return models.PlatformMomo
}

func MomoSearchURL(keyword string, page int) string {
	return fmt.Sprintf("%s/search/searchShop.jsp?keyword=%s&searchType=1&cateLevel=0&ent=k&sortType=1&curPage=%d",
		momoBaseURL, url.QueryEscape(keyword), page)
}

// Search walks result pages until max products are collected or a page looks
// like the last one.
func (s *MomoScraper) Search(ctx context.Context, keyword string, max int) ([]models.Product, error) {
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	products := []models.Product{}

	for page := 1; len(products) < max; page++ {
		parsed, err := s.fetchPage(ctx, keyword, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			s.logger.Warn("stopping at failed page", "page", page, "error", err)
			break
		}

		for _, p := range parsed.Products {
			if len(products) >= max {
				break
			}
			products = append(products, p)
		}

		s.logger.Info("momo page scraped",
			"page", page,
			"elements", parsed.Elements,
			"valid", len(parsed.Products),
			"total", len(products))

		if parsed.Elements < s.opts.PageSizeCutoff || len(parsed.Products) == 0 {
			break
		}
	}

	return products, nil
}

// Count reads the result counter on the first page, or estimates from the
// number of listings when the counter is missing.
func (s *MomoScraper) Count(ctx context.Context, keyword string) (int, error) {
	if keyword == "" {
		return 0, ErrEmptyKeyword
	}

	html, err := s.fetchHTML(ctx, MomoSearchURL(keyword, 1))
	if err != nil {
		return 0, err
	}

	if total := ParseMomoTotal(html); total > 0 {
		return total, nil
	}

	page, err := ParseMomoPage(html)
	if err != nil {
		return 0, err
	}
	return EstimateMomoTotal(page.Elements), nil
}

// EstimateMomoTotal assumes at least three pages when the first one is full.
func EstimateMomoTotal(firstPage int) int {
	if firstPage >= momoFullPage {
		return firstPage * 3
	}
	return firstPage
}

func (s *MomoScraper) fetchPage(ctx context.Context, keyword string, page int) (*MomoPage, error) {
	html, err := s.fetchHTML(ctx, MomoSearchURL(keyword, page))
	if err != nil {
		return nil, err
	}

	parsed, err := ParseMomoPage(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse momo page %d: %w", page, err)
	}
	if parsed.Elements == 0 {
		return nil, fmt.Errorf("momo page %d: %w", page, ErrNoListing)
	}
	return parsed, nil
}

func (s *MomoScraper) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	html, err := s.fetcher.FetchHTML(ctx, pageURL, momoItemSelectors, s.opts.MaxRetries)
	if err != nil {
		s.limiter.RecordError()
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}

	s.limiter.RecordSuccess()
	return html, nil
}
