package compare

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/maltedev/product-compare/internal/models"
)

const (
	AllMomo = "all"

	PlaceholderImage = "https://via.placeholder.com/300x200?text=No+Image"
	BrokenImage      = "https://via.placeholder.com/300x200?text=圖片載入失敗"
	pchomeImageHost  = "https://cs.ecimg.tw"
)

var ErrInvalidMomoIndex = errors.New("invalid momo index")

var pricePrinter = message.NewPrinter(language.English)

// Card is one clickable product cell.
type Card struct {
	Platform models.Platform
	ID       models.ProductID
	Title    string
	ImageURL string
	URL      string
	Price    string
}

// Key is the checkbox id, "<platform>_<id>".
func (c *Card) Key() string {
	return SelectionKey(c.Platform, c.ID)
}

func (c *Card) CardID() string {
	return fmt.Sprintf("%s-card-%s", c.Platform, c.ID)
}

func (c *Card) Entry() models.SelectionEntry {
	return models.SelectionEntry{ID: c.ID, Platform: c.Platform}
}

// Row pairs a momo card with a pchome card. Either side may be nil.
type Row struct {
	Index  int
	Momo   *Card
	Pchome *Card
}

func (r Row) Cards() []*Card {
	cards := make([]*Card, 0, 2)
	if r.Momo != nil {
		cards = append(cards, r.Momo)
	}
	if r.Pchome != nil {
		cards = append(cards, r.Pchome)
	}
	return cards
}

// BuildRows lays out state.MaxLength rows. With momoIndex "all" row i pairs
// Momo[i] with Pchome[i]; with a 1-based index every row shows that single
// momo product next to Pchome[i].
func BuildRows(state *State, momoIndex string) ([]Row, error) {
	fixed, err := resolveMomoIndex(state, momoIndex)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, state.MaxLength)
	for i := 0; i < state.MaxLength; i++ {
		row := Row{Index: i}

		switch {
		case fixed != nil:
			row.Momo = momoCard(fixed)
		case i < len(state.Momo):
			row.Momo = momoCard(&state.Momo[i])
		}

		if i < len(state.Pchome) {
			row.Pchome = pchomeCard(&state.Pchome[i])
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func resolveMomoIndex(state *State, momoIndex string) (*models.Product, error) {
	momoIndex = strings.TrimSpace(momoIndex)
	if momoIndex == "" || momoIndex == AllMomo {
		return nil, nil
	}

	idx, err := strconv.Atoi(momoIndex)
	if err != nil || idx < 1 || idx > len(state.Momo) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMomoIndex, momoIndex)
	}
	return &state.Momo[idx-1], nil
}

func momoCard(p *models.Product) *Card {
	image := p.ImageURL
	if image == "" {
		image = PlaceholderImage
	}
	return &Card{
		Platform: models.PlatformMomo,
		ID:       p.ID,
		Title:    p.Title,
		ImageURL: image,
		URL:      p.URL,
		Price:    FormatPrice(p.Price),
	}
}

func pchomeCard(p *models.Product) *Card {
	return &Card{
		Platform: models.PlatformPchome,
		ID:       p.ID,
		Title:    p.Title,
		ImageURL: PchomeImageURL(p.ImageURL),
		URL:      p.URL,
		Price:    FormatPrice(p.Price),
	}
}

// PchomeImageURL expands the relative picture paths the pchome API returns.
func PchomeImageURL(raw string) string {
	image := raw
	if !strings.HasPrefix(image, "http") {
		image = pchomeImageHost + raw
	}
	if !strings.HasPrefix(image, "http") {
		return PlaceholderImage
	}
	return image
}

// FormatPrice renders a price the way the page shows it, e.g. "NT$1,290".
func FormatPrice(price float64) string {
	return "NT$" + pricePrinter.Sprint(number.Decimal(price, number.MaxFractionDigits(3)))
}
