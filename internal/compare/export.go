package compare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maltedev/product-compare/internal/models"
)

const (
	ReportFilename = "selected_products.txt"

	NoMomoMatch = "無對應MOMO商品"

	missingSKU   = "無SKU"
	missingTitle = "未知商品名稱"
	missingImage = "無圖片"
	missingURL   = "無連結"
	missingQuery = "無關鍵字"
)

var (
	ErrNoSelection      = errors.New("請先勾選至少一個商品！")
	ErrNothingToExport  = errors.New("未找到勾選的商品對應內容！")
	ErrAmbiguousPairing = errors.New("一次只能將 PChome 商品對應到一個 MOMO 商品，請只勾選一個 MOMO 商品！")
)

// Export is everything one export click produces: the backend payload and
// the downloadable report.
type Export struct {
	Request       *models.SaveRequest
	Report        string
	SelectedCount int
}

// Connect picks the momo SKU every pchome record in an export links to.
func Connect(momoSKUs []string) string {
	if len(momoSKUs) == 0 {
		return NoMomoMatch
	}
	return momoSKUs[0]
}

// BuildExport turns checked entries into labeled records. Entries whose id is
// not in the catalog are skipped. Uncertainty values default to 0.
func BuildExport(state *State, entries []models.SelectionEntry, uncertainty map[models.ProductID]int) (*Export, error) {
	if len(entries) == 0 {
		return nil, ErrNoSelection
	}

	var (
		momoSKUs     []string
		momoRecords  []models.MomoRecord
		momoBlocks   []string
		pchomeRecs   []models.PchomeRecord
		pchomeBlocks []string
	)

	for _, entry := range entries {
		if entry.Platform != models.PlatformMomo {
			continue
		}
		p, ok := state.FindMomo(entry.ID)
		if !ok {
			continue
		}

		sku := orDefault(p.SKU, missingSKU)
		momoSKUs = append(momoSKUs, sku)
		momoBlocks = append(momoBlocks, reportBlock(p, models.PlatformMomo, ""))
		momoRecords = append(momoRecords, models.MomoRecord{
			SKU:      sku,
			Title:    orDefault(p.Title, missingTitle),
			Image:    orDefault(p.ImageURL, missingImage),
			URL:      orDefault(p.URL, missingURL),
			Platform: orDefault(string(p.Platform), string(models.PlatformMomo)),
			Connect:  models.ConnectRoot,
			Price:    p.Price,
			Query:    p.Query,
		})
	}

	connect := Connect(momoSKUs)
	for _, entry := range entries {
		if entry.Platform != models.PlatformPchome {
			continue
		}
		p, ok := state.FindPchome(entry.ID)
		if !ok {
			continue
		}

		pchomeBlocks = append(pchomeBlocks, reportBlock(p, models.PlatformPchome, connect))
		pchomeRecs = append(pchomeRecs, models.PchomeRecord{
			SKU:                orDefault(p.SKU, missingSKU),
			Title:              orDefault(p.Title, missingTitle),
			Image:              orDefault(p.ImageURL, missingImage),
			URL:                orDefault(p.URL, missingURL),
			Platform:           orDefault(string(p.Platform), string(models.PlatformPchome)),
			Connect:            connect,
			Price:              p.Price,
			UncertaintyProblem: uncertainty[p.ID],
			Query:              p.Query,
		})
	}

	if len(momoRecords) == 0 && len(pchomeRecs) == 0 {
		return nil, ErrNothingToExport
	}
	if len(momoRecords) > 1 && len(pchomeRecs) > 0 {
		return nil, ErrAmbiguousPairing
	}

	for i := range momoRecords {
		momoRecords[i].Num = len(pchomeRecs)
	}

	var report strings.Builder
	report.WriteString("======MOMO商品=======\n")
	for _, b := range momoBlocks {
		report.WriteString(b)
	}
	report.WriteString("======PCHOME商品=======\n")
	for _, b := range pchomeBlocks {
		report.WriteString(b)
	}

	if momoRecords == nil {
		momoRecords = []models.MomoRecord{}
	}
	if pchomeRecs == nil {
		pchomeRecs = []models.PchomeRecord{}
	}

	return &Export{
		Request: &models.SaveRequest{
			Products:     pchomeRecs,
			MomoProducts: momoRecords,
		},
		Report:        report.String(),
		SelectedCount: len(entries),
	}, nil
}

func reportBlock(p *models.Product, platform models.Platform, connect string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sku: %s\n", orDefault(p.SKU, missingSKU))
	fmt.Fprintf(&b, "title: %s\n", orDefault(p.Title, missingTitle))
	fmt.Fprintf(&b, "image: %s\n", orDefault(p.ImageURL, missingImage))
	fmt.Fprintf(&b, "url: %s\n", orDefault(p.URL, missingURL))
	fmt.Fprintf(&b, "platform: %s\n", orDefault(string(p.Platform), string(platform)))
	if platform == models.PlatformPchome {
		fmt.Fprintf(&b, "connect: %s\n", connect)
	}
	fmt.Fprintf(&b, "query: %s\n", orDefault(p.Query, missingQuery))
	fmt.Fprintf(&b, "price: %s\n\n", FormatPrice(p.Price))
	return b.String()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
