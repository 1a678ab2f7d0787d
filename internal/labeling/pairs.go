package labeling

import (
	"fmt"

	"github.com/maltedev/product-compare/internal/events"
	"github.com/maltedev/product-compare/internal/models"
)

// ValidateSaveRequest checks the parts the database would otherwise reject
// halfway through a transaction.
func ValidateSaveRequest(req *models.SaveRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty body", ErrInvalidRequest)
	}
	for _, p := range req.Products {
		if p.SKU == "" {
			return fmt.Errorf("%w: product sku is required", ErrInvalidRequest)
		}
		if p.UncertaintyProblem < 0 || p.UncertaintyProblem > 100 {
			return fmt.Errorf("%w: uncertainty_problem for %s must be between 1 and 100", ErrInvalidRequest, p.SKU)
		}
	}
	for _, m := range req.MomoProducts {
		if m.SKU == "" {
			return fmt.Errorf("%w: momo sku is required", ErrInvalidRequest)
		}
	}
	return nil
}

// PairPayloads groups pchome records under the momo record they connect to.
func PairPayloads(req *models.SaveRequest) []*events.PairLabeledPayload {
	payloads := make([]*events.PairLabeledPayload, 0, len(req.MomoProducts))

	for _, m := range req.MomoProducts {
		payload := &events.PairLabeledPayload{
			MomoSKU:   m.SKU,
			MomoTitle: m.Title,
			Query:     m.Query,
			Pchome:    []events.PairedProduct{},
		}
		for _, p := range req.Products {
			if p.Connect != m.SKU {
				continue
			}
			payload.Pchome = append(payload.Pchome, events.PairedProduct{
				SKU:         p.SKU,
				Title:       p.Title,
				Price:       p.Price,
				Uncertainty: p.UncertaintyProblem,
			})
		}
		payloads = append(payloads, payload)
	}

	return payloads
}
