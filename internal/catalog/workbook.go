package catalog

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/maltedev/product-compare/internal/models"
)

var workbookHeader = []any{"ID", "SKU", "Title", "Price", "Image URL", "URL", "Query"}

// WriteWorkbook saves both lists side by side as sheets "momo" and "pchome".
func WriteWorkbook(path string, momo, pchome []models.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", string(models.PlatformMomo)); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(string(models.PlatformPchome)); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	sheets := []struct {
		name     string
		products []models.Product
	}{
		{string(models.PlatformMomo), momo},
		{string(models.PlatformPchome), pchome},
	}

	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.products, bold); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, products []models.Product, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &workbookHeader); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{p.ID.String(), p.SKU, p.Title, p.Price, p.ImageURL, p.URL, p.Query}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	if err := f.SetColWidth(sheet, "C", "C", 60); err != nil {
		return err
	}
	return nil
}
