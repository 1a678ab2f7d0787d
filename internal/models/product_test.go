package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductValidate(t *testing.T) {
	tests := []struct {
		name     string
		product  Product
		problems []string
	}{
		{
			name:    "complete row",
			product: Product{ID: "1", Title: "Red Shoe", Price: 1290, Platform: PlatformPchome},
		},
		{
			name:    "empty title and platform allowed",
			product: Product{ID: "2"},
		},
		{
			name:     "missing id",
			product:  Product{Title: "Red Shoe", Platform: PlatformMomo},
			problems: []string{"ID is required"},
		},
		{
			name:     "negative price and unknown platform",
			product:  Product{ID: "3", Price: -1, Platform: "shopee"},
			problems: []string{"Price must not be negative", "Platform must be momo or pchome"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.problems, tt.product.Validate())
		})
	}
}
