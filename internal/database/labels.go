package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/maltedev/product-compare/internal/models"
)

// SaveResult counts what one labeled pair insert wrote.
type SaveResult struct {
	Labeled      int
	MomoInserted int
	MomoSkipped  int
}

// LabelRepository owns labeled_products, momo_products and pchome_products.
type LabelRepository struct {
	db *DB
}

func NewLabelRepository(db *DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// InsertPairsTx writes pchome records to labeled_products and momo records to
// momo_products. A momo SKU that is already stored is skipped.
func (r *LabelRepository) InsertPairsTx(ctx context.Context, tx pgx.Tx, req *models.SaveRequest) (SaveResult, error) {
	var result SaveResult

	for _, p := range req.Products {
		_, err := tx.Exec(ctx, `
			INSERT INTO labeled_products (sku, title, image, url, platform, connect, price, uncertainty_level, query)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.SKU, p.Title, p.Image, p.URL, p.Platform, p.Connect, p.Price,
			uncertaintyLevel(p.UncertaintyProblem), p.Query,
		)
		if err != nil {
			return SaveResult{}, fmt.Errorf("failed to insert labeled product %s: %w", p.SKU, err)
		}
		result.Labeled++
	}

	for _, m := range req.MomoProducts {
		tag, err := tx.Exec(ctx, `
			INSERT INTO momo_products (sku, title, image, url, platform, connect, price, num, query)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (sku) DO NOTHING`,
			m.SKU, m.Title, m.Image, m.URL, m.Platform, m.Connect, m.Price, m.Num, m.Query,
		)
		if err != nil {
			return SaveResult{}, fmt.Errorf("failed to insert momo product %s: %w", m.SKU, err)
		}
		if tag.RowsAffected() > 0 {
			result.MomoInserted++
		} else {
			result.MomoSkipped++
		}
	}

	return result, nil
}

// uncertaintyLevel maps the "not set" score 0 to NULL.
func uncertaintyLevel(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func (r *LabelRepository) TruncateLabeled(ctx context.Context) error {
	return r.truncate(ctx, "labeled_products")
}

func (r *LabelRepository) TruncateMomo(ctx context.Context) error {
	return r.truncate(ctx, "momo_products")
}

func (r *LabelRepository) TruncatePchome(ctx context.Context) error {
	return r.truncate(ctx, "pchome_products")
}

func (r *LabelRepository) truncate(ctx context.Context, table string) error {
	if _, err := r.db.pool.Exec(ctx, "TRUNCATE TABLE "+pgx.Identifier{table}.Sanitize()+" RESTART IDENTITY"); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", table, err)
	}
	return nil
}

// SeedPchome loads products into an empty pchome_products table and returns
// how many rows were inserted. A table that already has rows is left alone.
func (r *LabelRepository) SeedPchome(ctx context.Context, products []models.Product) (int, error) {
	inserted := 0

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		var existing int64
		if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM pchome_products").Scan(&existing); err != nil {
			return fmt.Errorf("failed to count pchome products: %w", err)
		}
		if existing > 0 || len(products) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, p := range products {
			batch.Queue(`
				INSERT INTO pchome_products (sku, title, image, url, platform, connect, price, query)
				VALUES ($1, $2, $3, $4, $5, '', $6, $7)
				ON CONFLICT (sku) DO NOTHING`,
				orDefault(p.SKU, "無SKU"),
				orDefault(p.Title, "未知商品名稱"),
				orDefault(p.ImageURL, "無圖片"),
				orDefault(p.URL, "無連結"),
				orDefault(string(p.Platform), string(models.PlatformPchome)),
				p.Price,
				p.Query,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range products {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("failed to insert pchome product: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// DeleteByMomoSKU removes a labeled pair: the momo row and every labeled
// product connected to it.
func (r *LabelRepository) DeleteByMomoSKU(ctx context.Context, sku string) (models.DeletedCounts, error) {
	var counts models.DeletedCounts

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM labeled_products WHERE connect = $1", sku)
		if err != nil {
			return fmt.Errorf("failed to delete labeled products: %w", err)
		}
		counts.Products = tag.RowsAffected()

		tag, err = tx.Exec(ctx, "DELETE FROM momo_products WHERE sku = $1", sku)
		if err != nil {
			return fmt.Errorf("failed to delete momo product: %w", err)
		}
		counts.MomoProducts = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return models.DeletedCounts{}, err
	}

	return counts, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
