package reports

import (
	"testing"
	"time"

	"stockbridge/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildMovementWorkbook(t *testing.T) {
	expires := "2025-01-31"
	day := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	movements := []models.StockMovement{
		{
			ID:           11,
			Product:      models.Product{ID: 42, Name: "Paracetamol"},
			Branch:       models.SiteRef{ID: 3, Name: "Makati"},
			MovementType: models.MovementTypeTransfer,
			Quantity:     5,
			Date:         day,
			Details:      "Dispatch for transfer #9",
		},
	}
	inventory := []models.InventoryItem{
		{
			ID:                1,
			Product:           models.Product{ID: 42, Name: "Paracetamol", SKU: "PCM-500", Price: decimal.RequireFromString("2.50")},
			Branch:            models.SiteRef{ID: 1, Name: "Central"},
			BatchNumber:       "B-1",
			Quantity:          4,
			ThresholdQuantity: 10,
			ExpirationDate:    &expires,
			UpdatedAt:         day,
		},
		{
			ID:       2,
			Product:  models.Product{ID: 43, Name: "Ibuprofen", Price: decimal.RequireFromString("1.25")},
			Branch:   models.SiteRef{ID: 1, Name: "Central"},
			Quantity: 8,
		},
	}

	buf, err := BuildMovementWorkbook(movements, inventory)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{MovementsSheet, InventorySheet}, f.GetSheetList())

	header, err := f.GetCellValue(MovementsSheet, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Type", header)

	kind, err := f.GetCellValue(MovementsSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "TRANSFER", kind)

	date, err := f.GetCellValue(MovementsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01 09:30", date)

	value, err := f.GetCellValue(InventorySheet, "I2")
	require.NoError(t, err)
	assert.Equal(t, "10", value)

	exp, err := f.GetCellValue(InventorySheet, "J2")
	require.NoError(t, err)
	assert.Equal(t, expires, exp)

	label, err := f.GetCellValue(InventorySheet, "H5")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL STOCK VALUE", label)

	total, err := f.GetCellValue(InventorySheet, "I5")
	require.NoError(t, err)
	assert.Equal(t, "20", total)
}

func TestBuildMovementWorkbook_Empty(t *testing.T) {
	buf, err := BuildMovementWorkbook(nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(MovementsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "stock_movements_2024-06-01.xlsx", Filename("2024-06-01"))
}
