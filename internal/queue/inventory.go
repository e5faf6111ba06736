package queue

import (
	"sort"
	"strings"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
)

// StockLevel buckets inventory rows for the warehouse stock view
type StockLevel string

const (
	StockLevelAll  StockLevel = "ALL"
	StockLevelLow  StockLevel = "LOW"
	StockLevelOut  StockLevel = "OUT"
	StockLevelHigh StockLevel = "HIGH"
)

const (
	lowStockBelow  = 10
	highStockAbove = 100
)

// Matches reports whether quantity falls in the bucket
func (l StockLevel) Matches(quantity int) bool {
	switch l {
	case StockLevelLow:
		return quantity < lowStockBelow
	case StockLevelOut:
		return quantity == 0
	case StockLevelHigh:
		return quantity > highStockAbove
	default:
		return true
	}
}

// ParseStockLevel validates a stock level filter value
func ParseStockLevel(s string) (StockLevel, error) {
	switch level := StockLevel(strings.ToUpper(strings.TrimSpace(s))); level {
	case "":
		return StockLevelAll, nil
	case StockLevelAll, StockLevelLow, StockLevelOut, StockLevelHigh:
		return level, nil
	}
	return "", common.NewValidationError("level", "level must be one of: ALL, LOW, OUT, HIGH")
}

// InventoryFilter selects inventory rows by product name and stock level
type InventoryFilter struct {
	Search string
	Level  StockLevel
}

// FilterInventory applies f to items, preserving order
func FilterInventory(items []models.InventoryItem, f InventoryFilter) []models.InventoryItem {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.InventoryItem, 0, len(items))
	for _, item := range items {
		if search != "" && !strings.Contains(strings.ToLower(item.Product.Name), search) {
			continue
		}
		if !f.Level.Matches(item.Quantity) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// MovementFilter selects stock movements by type, branch and date
type MovementFilter struct {
	Type   string
	Branch string
	From   *time.Time
	To     *time.Time
}

// ParseMovementType validates a movement type filter value
func ParseMovementType(s string) (string, error) {
	switch t := strings.ToUpper(strings.TrimSpace(s)); t {
	case "":
		return AllSentinel, nil
	case AllSentinel, string(models.MovementTypeAdd), string(models.MovementTypeRemove), string(models.MovementTypeTransfer):
		return t, nil
	}
	return "", common.NewValidationError("type", "type must be one of: ALL, ADD, REMOVE, TRANSFER")
}

// FilterMovements applies f to movements, preserving order
func FilterMovements(movements []models.StockMovement, f MovementFilter) []models.StockMovement {
	out := make([]models.StockMovement, 0, len(movements))
	for _, m := range movements {
		if f.Type != "" && f.Type != AllSentinel && string(m.MovementType) != f.Type {
			continue
		}
		if f.Branch != "" && f.Branch != AllSentinel && !movementTouchesBranch(m, f.Branch) {
			continue
		}
		if !InDateRange(m.Date, f.From, f.To) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func movementTouchesBranch(m models.StockMovement, branch string) bool {
	return m.Branch.Label() == branch || m.SourceName == branch || m.DestinationName == branch
}

// SortInventory orders rows most recently updated first
func SortInventory(items []models.InventoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
}

// SortMovements orders movements newest first
func SortMovements(movements []models.StockMovement) {
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].Date.After(movements[j].Date)
	})
}
