package reports

import (
	"bytes"
	"fmt"

	"stockbridge/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	MovementsSheet = "Movements"
	InventorySheet = "Inventory"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	movementHeaders  = []string{"ID", "Date", "Type", "Product", "Branch", "Source", "Destination", "Quantity", "Details"}
	inventoryHeaders = []string{"ID", "Product", "SKU", "Branch", "Batch", "Quantity", "Threshold", "Unit Price", "Stock Value", "Expires", "Updated"}
)

// Filename is the attachment name of an export generated on the given day
func Filename(day string) string {
	return fmt.Sprintf("stock_movements_%s.xlsx", day)
}

// BuildMovementWorkbook writes movements and inventory into a two-sheet workbook
func BuildMovementWorkbook(movements []models.StockMovement, inventory []models.InventoryItem) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	writeHeaders := func(sheet string, headers []string) error {
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
				return err
			}
		}
		return nil
	}

	writeRow := func(sheet string, row int, values []interface{}) error {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	if err := f.SetSheetName("Sheet1", MovementsSheet); err != nil {
		return nil, err
	}
	if err := writeHeaders(MovementsSheet, movementHeaders); err != nil {
		return nil, err
	}
	for i, m := range movements {
		if err := writeRow(MovementsSheet, i+2, []interface{}{
			m.ID,
			m.Date.Format("2006-01-02 15:04"),
			string(m.MovementType),
			m.Product.Name,
			m.Branch.Label(),
			m.SourceName,
			m.DestinationName,
			m.Quantity,
			m.Details,
		}); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(InventorySheet); err != nil {
		return nil, err
	}
	if err := writeHeaders(InventorySheet, inventoryHeaders); err != nil {
		return nil, err
	}
	total := decimal.Zero
	row := 2
	for _, item := range inventory {
		value := item.StockValue()
		total = total.Add(value)

		expires := ""
		if item.ExpirationDate != nil {
			expires = *item.ExpirationDate
		}
		if err := writeRow(InventorySheet, row, []interface{}{
			item.ID,
			item.Product.Name,
			item.Product.SKU,
			item.Branch.Label(),
			item.BatchNumber,
			item.Quantity,
			item.ThresholdQuantity,
			item.Product.Price.InexactFloat64(),
			value.InexactFloat64(),
			expires,
			item.UpdatedAt.Format("2006-01-02 15:04"),
		}); err != nil {
			return nil, err
		}
		row++
	}

	totalRow := row + 1
	if err := f.SetCellValue(InventorySheet, fmt.Sprintf("H%d", totalRow), "TOTAL STOCK VALUE"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(InventorySheet, fmt.Sprintf("I%d", totalRow), total.InexactFloat64()); err != nil {
		return nil, err
	}

	if err := f.AutoFilter(MovementsSheet, "A1:I1", []excelize.AutoFilterOptions{}); err != nil {
		return nil, err
	}
	if err := f.SetPanes(MovementsSheet, &excelize.Panes{Freeze: true, Split: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}
	if err := f.AutoFilter(InventorySheet, "A1:K1", []excelize.AutoFilterOptions{}); err != nil {
		return nil, err
	}
	if err := f.SetPanes(InventorySheet, &excelize.Panes{Freeze: true, Split: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f.WriteToBuffer()
}
