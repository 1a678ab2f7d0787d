package compare

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/maltedev/product-compare/internal/models"
)

type LabelMode string

const (
	LabelByIndex LabelMode = "index"
	LabelBySKU   LabelMode = "sku"
)

var (
	ErrInvalidLabelIndex = errors.New("請輸入有效的商品編號")
	ErrEmptyLabelSKU     = errors.New("請輸入 MOMO 商品 SKU")
	ErrUnknownLabelMode  = errors.New("unknown label mode")
)

// LabelTarget is the momo SKU a delete-by-label request will remove. Product
// is nil when the SKU is not in the local catalog.
type LabelTarget struct {
	SKU     string
	Product *models.Product
}

func ParseLabelMode(s string) (LabelMode, error) {
	switch LabelMode(strings.TrimSpace(s)) {
	case LabelByIndex:
		return LabelByIndex, nil
	case LabelBySKU:
		return LabelBySKU, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabelMode, s)
}

// ResolveLabelTarget validates operator input. Index mode is 1-based over the
// momo list.
func ResolveLabelTarget(state *State, mode LabelMode, input string) (*LabelTarget, error) {
	input = strings.TrimSpace(input)

	switch mode {
	case LabelByIndex:
		idx, err := strconv.Atoi(input)
		if err != nil || idx < 1 || idx > len(state.Momo) {
			return nil, fmt.Errorf("%w (1-%d)", ErrInvalidLabelIndex, len(state.Momo))
		}
		p := &state.Momo[idx-1]
		if p.SKU == "" {
			return nil, fmt.Errorf("第 %d 個 MOMO 商品沒有 SKU", idx)
		}
		return &LabelTarget{SKU: p.SKU, Product: p}, nil

	case LabelBySKU:
		if input == "" {
			return nil, ErrEmptyLabelSKU
		}
		target := &LabelTarget{SKU: input}
		if p, ok := state.FindMomoBySKU(input); ok {
			target.Product = p
		}
		return target, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownLabelMode, mode)
}

// ConfirmPrompt is the text of the delete confirmation page.
func (t *LabelTarget) ConfirmPrompt() string {
	if t.Product == nil {
		return fmt.Sprintf("確定要刪除 SKU 為 %s 的標記資料嗎？\n\n將刪除該 MOMO 商品及所有對應的 PChome 商品。此操作無法復原！", t.SKU)
	}
	return fmt.Sprintf("確定要刪除以下商品的標記資料嗎？\n\nSKU: %s\n商品名稱: %s\n價格: %s\n\n將刪除該 MOMO 商品及所有對應的 PChome 商品。此操作無法復原！",
		t.SKU, t.Product.Title, FormatPrice(t.Product.Price))
}
