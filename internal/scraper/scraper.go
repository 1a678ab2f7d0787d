package scraper

import (
	"context"
	"errors"
	"strconv"

	"github.com/maltedev/product-compare/internal/config"
	"github.com/maltedev/product-compare/internal/models"
)

var (
	ErrEmptyKeyword = errors.New("keyword is required")
	ErrNoListing    = errors.New("no listing elements found")
	ErrBadResponse  = errors.New("unexpected search response")
)

// Scraper collects up to max listings for a keyword from one platform.
type Scraper interface {
	Platform() models.Platform
	Search(ctx context.Context, keyword string, max int) ([]models.Product, error)
	Count(ctx context.Context, keyword string) (int, error)
}

type Options struct {
	MaxRetries     int
	PageSizeCutoff int
}

func OptionsFromConfig(cfg config.ScraperConfig) Options {
	return Options{
		MaxRetries:     cfg.MaxRetries,
		PageSizeCutoff: cfg.PageSizeCutoff,
	}
}

func DefaultOptions() Options {
	return Options{MaxRetries: 3, PageSizeCutoff: 20}
}

// Label numbers products from 1 in list order and stamps the query label
// the console shows next to each card.
func Label(products []models.Product, query string) []models.Product {
	for i := range products {
		products[i].ID = models.ProductID(strconv.Itoa(i + 1))
		products[i].Query = query
	}
	return products
}
