package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement log row
type MovementType string

const (
	MovementTypeAdd      MovementType = "ADD"
	MovementTypeRemove   MovementType = "REMOVE"
	MovementTypeTransfer MovementType = "TRANSFER"
)

// Product represents a catalog entry
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	SKU   string          `json:"sku,omitempty"`
	Price decimal.Decimal `json:"unit_price"`
}

// Site is a branch or the central warehouse
type Site struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location,omitempty"`
	IsWarehouse bool   `json:"is_warehouse"`
}

// SiteRef is a site as embedded in inventory and movement rows. The backend sends either
// the bare id or the nested object, so both are accepted.
type SiteRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

func (r *SiteRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] != '{' {
		return json.Unmarshal(data, &r.ID)
	}

	type plain SiteRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = SiteRef(p)
	return nil
}

// Label is the site name, or "Site #id" when only the id was sent
func (r SiteRef) Label() string {
	if r.Name != "" || r.ID == 0 {
		return r.Name
	}
	return fmt.Sprintf("Site #%d", r.ID)
}

// Customer represents a registered point-of-sale customer
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// InventoryItem represents stock of one product batch at one site
type InventoryItem struct {
	ID                int64     `json:"id"`
	Product           Product   `json:"product"`
	Branch            SiteRef   `json:"branch"`
	BatchNumber       string    `json:"batch_number"`
	Quantity          int       `json:"quantity"`
	ThresholdQuantity int       `json:"threshold_quantity"`
	ExpirationDate    *string   `json:"expiration_date"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsLowStock reports whether the item has crossed its alert threshold without being empty
func (i InventoryItem) IsLowStock() bool {
	return i.Quantity > 0 && i.Quantity <= i.ThresholdQuantity
}

// StockValue is quantity times the product's unit price
func (i InventoryItem) StockValue() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StockMovement is an immutable audit row
type StockMovement struct {
	ID              int64        `json:"id"`
	Product         Product      `json:"product"`
	Branch          SiteRef      `json:"branch"`
	MovementType    MovementType `json:"movement_type"`
	Quantity        int          `json:"quantity"`
	Date            time.Time    `json:"date"`
	Details         string       `json:"details"`
	SourceName      string       `json:"source_name,omitempty"`
	DestinationName string       `json:"destination_name,omitempty"`
}

// Dashboard is the result of a full data refresh
type Dashboard struct {
	Inventory     []InventoryItem   `json:"inventory"`
	Movements     []StockMovement   `json:"movements"`
	Transfers     []TransferRequest `json:"transfers"`
	Sites         []Site            `json:"sites,omitempty"`
	Notifications []Notification    `json:"notifications"`
	RefreshedAt   time.Time         `json:"refreshed_at"`
}
