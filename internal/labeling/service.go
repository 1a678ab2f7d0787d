package labeling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/maltedev/product-compare/internal/catalog"
	"github.com/maltedev/product-compare/internal/database"
	"github.com/maltedev/product-compare/internal/events"
	"github.com/maltedev/product-compare/internal/models"
)

var ErrInvalidRequest = errors.New("invalid request")

// Service persists labeled pairs and runs the table maintenance operations.
type Service struct {
	db         *database.DB
	labels     *database.LabelRepository
	publisher  *events.Publisher
	pchomeFile string
	logger     *slog.Logger
}

func NewService(db *database.DB, publisher *events.Publisher, pchomeFile string, logger *slog.Logger) *Service {
	return &Service{
		db:         db,
		labels:     database.NewLabelRepository(db),
		publisher:  publisher,
		pchomeFile: pchomeFile,
		logger:     logger.With("component", "labeling"),
	}
}

// SaveSelection stores one export in a single transaction together with a
// PAIR_LABELED event per momo product.
func (s *Service) SaveSelection(ctx context.Context, req *models.SaveRequest) (database.SaveResult, error) {
	if err := ValidateSaveRequest(req); err != nil {
		return database.SaveResult{}, err
	}

	var result database.SaveResult
	err := s.db.Transaction(ctx, func(tx pgx.Tx) error {
		var err error
		result, err = s.labels.InsertPairsTx(ctx, tx, req)
		if err != nil {
			return err
		}

		for _, payload := range PairPayloads(req) {
			if err := s.publisher.PublishPairLabeledTx(ctx, tx, payload); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return database.SaveResult{}, fmt.Errorf("failed to save selection: %w", err)
	}

	s.logger.Info("selection saved",
		"labeled", result.Labeled,
		"momo_inserted", result.MomoInserted,
		"momo_skipped", result.MomoSkipped)

	return result, nil
}

func (s *Service) ClearLabeled(ctx context.Context) error {
	if err := s.labels.TruncateLabeled(ctx); err != nil {
		return err
	}
	s.logger.Info("labeled_products cleared")
	return nil
}

func (s *Service) ClearMomo(ctx context.Context) error {
	if err := s.labels.TruncateMomo(ctx); err != nil {
		return err
	}
	s.logger.Info("momo_products cleared")
	return nil
}

func (s *Service) ClearPchome(ctx context.Context) error {
	if err := s.labels.TruncatePchome(ctx); err != nil {
		return err
	}
	s.logger.Info("pchome_products cleared")
	return nil
}

// InitializePchome seeds pchome_products from the catalog file when the table
// is empty.
func (s *Service) InitializePchome(ctx context.Context) (int, error) {
	products, err := catalog.Load(s.pchomeFile)
	if err != nil {
		return 0, err
	}

	inserted, err := s.labels.SeedPchome(ctx, products)
	if err != nil {
		return 0, err
	}

	s.logger.Info("pchome_products initialized",
		"file", s.pchomeFile,
		"available", len(products),
		"inserted", inserted)
	return inserted, nil
}

func (s *Service) DeleteLabeled(ctx context.Context, momoSKU string) (models.DeletedCounts, error) {
	momoSKU = strings.TrimSpace(momoSKU)
	if momoSKU == "" {
		return models.DeletedCounts{}, fmt.Errorf("%w: momo_sku is required", ErrInvalidRequest)
	}

	counts, err := s.labels.DeleteByMomoSKU(ctx, momoSKU)
	if err != nil {
		return models.DeletedCounts{}, err
	}

	s.logger.Info("labeled product deleted",
		"momo_sku", momoSKU,
		"momo_products", counts.MomoProducts,
		"products", counts.Products)
	return counts, nil
}
