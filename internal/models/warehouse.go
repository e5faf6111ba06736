package models

// DispatchInput moves stock from the warehouse to a branch
type DispatchInput struct {
	ProductID     int64  `json:"product_id"`
	Quantity      int    `json:"quantity"`
	DestinationID int64  `json:"destination_id"`
	Notes         string `json:"notes"`
}

// DispatchResponse is returned by v1/warehouse/dispatch/
type DispatchResponse struct {
	TransferID int64  `json:"transfer_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ReceiveInput books inbound stock into the warehouse
type ReceiveInput struct {
	ProductID      int64   `json:"product_id"`
	Quantity       int     `json:"quantity"`
	BatchNumber    string  `json:"batch_number,omitempty"`
	ExpirationDate *string `json:"expiration_date"`
	Notes          string  `json:"notes,omitempty"`
}

// ReceiveResponse is returned by v1/warehouse/receive/
type ReceiveResponse struct {
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Document is an archived waybill or receiving note
type Document struct {
	ObjectName  string `json:"object_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// DispatchResult is what the dispatch command reports back to the caller
type DispatchResult struct {
	TransferID    int64     `json:"transfer_id,omitempty"`
	Message       string    `json:"message,omitempty"`
	Document      *Document `json:"document,omitempty"`
	DocumentError string    `json:"document_error,omitempty"`
}

// ReceiveResult is what the inbound receive command reports back to the caller
type ReceiveResult struct {
	ID            int64     `json:"id,omitempty"`
	Message       string    `json:"message,omitempty"`
	Document      *Document `json:"document,omitempty"`
	DocumentError string    `json:"document_error,omitempty"`
}
