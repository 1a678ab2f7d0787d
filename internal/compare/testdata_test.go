package compare

import "github.com/maltedev/product-compare/internal/models"

func momoProduct(id, sku, title string, price float64) models.Product {
	return models.Product{
		ID:       models.ProductID(id),
		SKU:      sku,
		Title:    title,
		Price:    price,
		ImageURL: "https://img.momoshop.com.tw/goodsimg/" + sku + ".jpg",
		URL:      "https://www.momoshop.com.tw/goods/GoodsDetail.jsp?i_code=" + sku,
		Platform: models.PlatformMomo,
		Query:    "shoe",
	}
}

func pchomeProduct(id, sku, title string, price float64) models.Product {
	return models.Product{
		ID:       models.ProductID(id),
		SKU:      sku,
		Title:    title,
		Price:    price,
		ImageURL: "/items/" + sku + ".jpg",
		URL:      "https://24h.pchome.com.tw/prod/" + sku,
		Platform: models.PlatformPchome,
		Query:    "shoe",
	}
}

func sampleState() *State {
	return NewState(
		[]models.Product{
			momoProduct("1", "M1", "Momo Red Shoe", 1290),
			momoProduct("2", "M2", "Momo Blue Shoe", 990),
		},
		[]models.Product{
			pchomeProduct("1", "P1", "Red Shoe", 1200),
			pchomeProduct("2", "P2", "Blue Shoe", 980),
			pchomeProduct("3", "P3", "Red Hat", 450),
		},
	)
}
