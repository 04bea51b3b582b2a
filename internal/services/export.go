package services

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hoteldesk/internal/domain"
)

const exportSheet = "Hotels"

// ExportHotels streams every hotel as an XLSX workbook to w.
func (s *HotelService) ExportHotels(ctx context.Context, w io.Writer) (int, error) {
	hotels, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := WriteWorkbook(w, hotels); err != nil {
		return 0, err
	}
	return len(hotels), nil
}

func WriteWorkbook(w io.Writer, hotels []domain.Hotel) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &[]any{"ID", "Name", "Description"}); err != nil {
		return fmt.Errorf("export header: %w", err)
	}
	for i, h := range hotels {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &[]any{h.ID, h.Name, h.Description}); err != nil {
			return fmt.Errorf("export row %d: %w", h.ID, err)
		}
	}
	_ = f.SetColWidth(exportSheet, "B", "B", 28)
	_ = f.SetColWidth(exportSheet, "C", "C", 60)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export write: %w", err)
	}
	return nil
}
