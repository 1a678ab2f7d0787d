package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maltedev/product-compare/internal/models"
	"github.com/maltedev/product-compare/internal/ratelimit"
)

const (
	PchomeSearchBaseURL = "https://ecshweb.pchome.com.tw/search/v3.3/all/results"
	pchomeProductURL    = "https://24h.pchome.com.tw/prod/"
	pchomeImageBase     = "https://cs.ecimg.tw"
)

type pchomeResponse struct {
	TotalRows int          `json:"totalRows"`
	TotalPage int          `json:"totalPage"`
	Prods     []pchomeProd `json:"prods"`
}

type pchomeProd struct {
	ID    string  `json:"Id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	PicB  string  `json:"picB"`
}

type PchomeScraper struct {
	client  *http.Client
	baseURL string
	limiter *ratelimit.TokenLimiter
	opts    Options
	logger  *slog.Logger
}

func NewPchomeScraper(baseURL string, limiter *ratelimit.TokenLimiter, opts Options, logger *slog.Logger) *PchomeScraper {
	if baseURL == "" {
		baseURL = PchomeSearchBaseURL
	}
	return &PchomeScraper{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		limiter: limiter,
		opts:    opts,
		logger:  logger.With("component", "pchome_scraper"),
	}
}

func (s *PchomeScraper) Platform() models.Platform {
	return models.PlatformPchome
}

func (s *PchomeScraper) Search(ctx context.Context, keyword string, max int) ([]models.Product, error) {
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	products := []models.Product{}

	for page := 1; len(products) < max; page++ {
		resp, err := s.fetch(ctx, keyword, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			s.logger.Warn("stopping at failed page", "page", page, "error", err)
			break
		}
		if len(resp.Prods) == 0 {
			break
		}

		for _, item := range resp.Prods {
			if len(products) >= max {
				break
			}
			if p, ok := pchomeProduct(item); ok {
				products = append(products, p)
			}
		}

		s.logger.Info("pchome page scraped",
			"page", page,
			"items", len(resp.Prods),
			"total", len(products))

		if len(resp.Prods) < s.opts.PageSizeCutoff {
			break
		}
	}

	return products, nil
}

// Count returns totalRows of the first result page.
func (s *PchomeScraper) Count(ctx context.Context, keyword string) (int, error) {
	if keyword == "" {
		return 0, ErrEmptyKeyword
	}
	resp, err := s.fetch(ctx, keyword, 1)
	if err != nil {
		return 0, err
	}
	return resp.TotalRows, nil
}

func (s *PchomeScraper) searchURL(keyword string, page int) string {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("page", fmt.Sprint(page))
	q.Set("sort", "sale/dc")
	return s.baseURL + "?" + q.Encode()
}

func (s *PchomeScraper) fetch(ctx context.Context, keyword string, page int) (*pchomeResponse, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL(keyword, page), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pchome search page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pchome search page %d: status %d: %w", page, resp.StatusCode, ErrBadResponse)
	}

	var out pchomeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("pchome search page %d: %w: %v", page, ErrBadResponse, err)
	}
	return &out, nil
}

func pchomeProduct(item pchomeProd) (models.Product, bool) {
	if item.Name == "" || item.Price <= 0 || item.ID == "" {
		return models.Product{}, false
	}
	return models.Product{
		SKU:      item.ID,
		Title:    item.Name,
		Price:    item.Price,
		ImageURL: NormalizePchomeImage(item.PicB),
		URL:      pchomeProductURL + item.ID,
		Platform: models.PlatformPchome,
	}, true
}

func NormalizePchomeImage(src string) string {
	switch {
	case src == "":
		return ""
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		return pchomeImageBase + src
	case strings.HasPrefix(src, "http"):
		return src
	default:
		return pchomeImageBase + "/" + src
	}
}
