package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/maltedev/product-compare/internal/backend"
	"github.com/maltedev/product-compare/internal/models"
)

const unreachableMessage = "無法連接到伺服器！"

// Backend is the labeling API as the console uses it.
type Backend interface {
	SaveSelection(ctx context.Context, req *models.SaveRequest) (*models.Response, error)
	ClearProducts(ctx context.Context) (*models.Response, error)
	ClearMomoProducts(ctx context.Context) (*models.Response, error)
	ClearPchomeProducts(ctx context.Context) (*models.Response, error)
	InitializePchome(ctx context.Context) (*models.Response, error)
	DeleteLabeledProduct(ctx context.Context, momoSKU string) (*models.Response, error)
}

// MaintenanceAction is a destructive table operation behind a confirmation page.
type MaintenanceAction struct {
	Name     string
	ButtonID string
	Label    string
	Prompt   string
	Run      func(ctx context.Context, b Backend) (string, error)
}

var maintenanceActions = []*MaintenanceAction{
	{
		Name:     "clear-products",
		ButtonID: "clearProductsButton",
		Label:    "清空標記商品",
		Prompt:   "確定要清空 labeled_products 表格嗎？此操作無法復原！",
		Run: func(ctx context.Context, b Backend) (string, error) {
			if _, err := b.ClearProducts(ctx); err != nil {
				return "", failure("清空 labeled_products 失敗", err)
			}
			return "labeled_products 表格已清空！", nil
		},
	},
	{
		Name:     "clear-momo",
		ButtonID: "clearMomoButton",
		Label:    "清空 MOMO 商品",
		Prompt:   "確定要清空 momo_products 表格嗎？此操作無法復原！",
		Run: func(ctx context.Context, b Backend) (string, error) {
			if _, err := b.ClearMomoProducts(ctx); err != nil {
				return "", failure("清空 momo_products 失敗", err)
			}
			return "momo_products 表格已清空！", nil
		},
	},
	{
		Name:     "clear-pchome",
		ButtonID: "clearPchomeButton",
		Label:    "重新載入 PChome 商品",
		Prompt:   "確定要清空並重新載入 pchome_products 表格嗎？\n\n執行內容：\n1. 清空資料庫\n2. 從 pchome_products.json 重新載入資料",
		Run:      clearAndReloadPchome,
	},
}

// clearAndReloadPchome chains the clear and the reload. The clear is already
// committed when the reload fails, and the error says so.
func clearAndReloadPchome(ctx context.Context, b Backend) (string, error) {
	if _, err := b.ClearPchomeProducts(ctx); err != nil {
		return "", failure("處理 pchome_products 失敗", err)
	}

	resp, err := b.InitializePchome(ctx)
	if err != nil {
		return "", failure("pchome_products 已清空，但重新載入失敗", err)
	}

	inserted := 0
	if resp.Inserted != nil {
		inserted = *resp.Inserted
	}
	return fmt.Sprintf("成功！已清空並重新載入 %d 筆 PChome 商品資料！", inserted), nil
}

// failure shows the backend's own message when it answered, and the generic
// connection message otherwise.
func failure(prefix string, err error) error {
	var rejected *backend.RejectedError
	if errors.As(err, &rejected) {
		return fmt.Errorf("%s：%s", prefix, rejected.Message)
	}
	return fmt.Errorf("%s：%s", prefix, unreachableMessage)
}

func findMaintenanceAction(name string) (*MaintenanceAction, bool) {
	for _, a := range maintenanceActions {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}
