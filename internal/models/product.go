package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformMomo   Platform = "momo"
	PlatformPchome Platform = "pchome"
)

// ParsePlatform accepts the platform names used in checkbox ids and payloads.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformMomo:
		return PlatformMomo, nil
	case PlatformPchome:
		return PlatformPchome, nil
	}
	return "", fmt.Errorf("unknown platform: %q", s)
}

// ProductID is the identity of a product within its source list. Scraped
// catalogs carry it as a JSON number, but it is always compared as a string.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid product id %s: %w", data, err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) MarshalJSON() ([]byte, error) {
	if id.isNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ProductID) String() string {
	return string(id)
}

func (id ProductID) isNumeric() bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Product is one scraped listing from either platform.
type Product struct {
	ID       ProductID `json:"id"`
	SKU      string    `json:"sku"`
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	ImageURL string    `json:"image_url"`
	URL      string    `json:"url"`
	Platform Platform  `json:"platform"`
	Query    string    `json:"query,omitempty"`
}

// Validate lists what is wrong with a scraped row. An empty title is allowed,
// exports substitute a placeholder for it.
func (p *Product) Validate() []string {
	var errors []string

	if p.ID == "" {
		errors = append(errors, "ID is required")
	}

	if p.Price < 0 {
		errors = append(errors, "Price must not be negative")
	}

	if p.Platform != "" && p.Platform != PlatformMomo && p.Platform != PlatformPchome {
		errors = append(errors, "Platform must be momo or pchome")
	}

	return errors
}

// SelectionEntry is a checked card at export time.
type SelectionEntry struct {
	ID       ProductID `json:"id"`
	Platform Platform  `json:"platform"`
}

// PchomeRecord is a selected pchome product linked to a momo SKU.
type PchomeRecord struct {
	SKU                string  `json:"sku"`
	Title              string  `json:"title"`
	Image              string  `json:"image"`
	URL                string  `json:"url"`
	Platform           string  `json:"platform"`
	Connect            string  `json:"connect"`
	Price              float64 `json:"price"`
	UncertaintyProblem int     `json:"uncertainty_problem"`
	Query              string  `json:"query"`
}

// MomoRecord is a selected momo product, the root of a labeled pair.
type MomoRecord struct {
	SKU      string  `json:"sku"`
	Title    string  `json:"title"`
	Image    string  `json:"image"`
	URL      string  `json:"url"`
	Platform string  `json:"platform"`
	Connect  string  `json:"connect"`
	Price    float64 `json:"price"`
	Num      int     `json:"num"`
	Query    string  `json:"query"`
}

// ConnectRoot marks a momo record as the root of its pair.
const ConnectRoot = "root"

// SaveRequest is the body of POST /save-to-mysql.
type SaveRequest struct {
	Products     []PchomeRecord `json:"products"`
	MomoProducts []MomoRecord   `json:"momo_products"`
}

// DeleteLabelRequest is the body of POST /delete-labeled-product.
type DeleteLabelRequest struct {
	MomoSKU string `json:"momo_sku"`
}

// DeletedCounts reports rows removed by a delete-by-label request.
type DeletedCounts struct {
	MomoProducts int64 `json:"momo_products"`
	Products     int64 `json:"products"`
}

// Response is the envelope every backend endpoint answers with.
type Response struct {
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Message  string         `json:"message,omitempty"`
	Inserted *int           `json:"inserted,omitempty"`
	Deleted  *DeletedCounts `json:"deleted,omitempty"`
}
