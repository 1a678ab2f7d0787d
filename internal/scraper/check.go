package scraper

import (
	"context"

	"github.com/maltedev/product-compare/internal/models"
)

type CountResult struct {
	Platform  models.Platform `json:"platform"`
	Actual    int             `json:"actual_count"`
	Target    int             `json:"target_count"`
	HasEnough bool            `json:"has_enough"`
	Error     string          `json:"error,omitempty"`
}

type CheckReport struct {
	Keyword string        `json:"keyword"`
	Results []CountResult `json:"results"`
}

// BothEnough is false when any platform failed or came up short.
func (r CheckReport) BothEnough() bool {
	if len(r.Results) == 0 {
		return false
	}
	for _, res := range r.Results {
		if !res.HasEnough {
			return false
		}
	}
	return true
}

// CheckCounts asks every scraper how many listings keyword has. A failing
// platform is reported, not returned as an error.
func CheckCounts(ctx context.Context, keyword string, target int, scrapers ...Scraper) CheckReport {
	report := CheckReport{Keyword: keyword}
	for _, s := range scrapers {
		res := CountResult{Platform: s.Platform(), Target: target}
		n, err := s.Count(ctx, keyword)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Actual = n
			res.HasEnough = n >= target
		}
		report.Results = append(report.Results, res)
	}
	return report
}
