package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maltedev/product-compare/internal/models"
)

// Load reads a scraped product list. A missing file is not an error: the page
// still renders, just with an empty column.
func Load(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("catalog file not found, using empty list", "path", path)
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if products == nil {
		products = []models.Product{}
	}

	// rows stay in place: the page pairs momo and pchome lists by position
	for i := range products {
		if problems := products[i].Validate(); len(problems) > 0 {
			slog.Warn("malformed catalog row",
				"path", path,
				"index", i,
				"id", products[i].ID,
				"problems", problems)
		}
	}

	return products, nil
}

// Save writes the list to path through a temp file in the same directory so a
// reader never sees a half-written catalog.
func Save(path string, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace catalog %s: %w", path, err)
	}

	return nil
}

// LoadPair loads both platform lists.
func LoadPair(momoPath, pchomePath string) (momo, pchome []models.Product, err error) {
	momo, err = Load(momoPath)
	if err != nil {
		return nil, nil, err
	}
	pchome, err = Load(pchomePath)
	if err != nil {
		return nil, nil, err
	}
	return momo, pchome, nil
}
