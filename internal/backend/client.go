package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/models"
)

// Generic messages shown when the upstream gives no usable reason
const (
	FallbackCreateTransfer  = "Failed to create transfer"
	FallbackDecision        = "Action failed"
	FallbackReceiveTransfer = "Error confirming receipt"
	FallbackDispatch        = "Failed to dispatch stock"
	FallbackReceive         = "Failed to receive stock"
	FallbackDocument        = "Failed to download document"
	FallbackNotifications   = "Failed to load notifications"
	FallbackLoad            = "Failed to load data"
)

// Binary is a non-JSON response body such as a PDF document
type Binary struct {
	Data        []byte
	ContentType string
}

// Client issues workflow commands against the upstream inventory REST API.
// Every call makes exactly one attempt; retrying is always the caller's explicit decision.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client rooted at baseURL (for example http://host/api/)
func NewClient(baseURL string, timeout time.Duration) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// makeRequest performs an HTTP request, forwarding the caller's bearer token
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token, ok := common.GetTokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID := common.GetRequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

// do sends one JSON request and decodes a 2xx body into out when out is non-nil
func (c *Client) do(ctx context.Context, op, fallback, method, endpoint string, payload, out interface{}) error {
	resp, err := c.makeRequest(ctx, method, endpoint, payload)
	if err != nil {
		return &common.RequestFailure{Op: op, Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &common.RequestFailure{Op: op, Status: resp.StatusCode, Message: fallback, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newFailure(op, fallback, resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &common.RequestFailure{Op: op, Status: resp.StatusCode, Message: fallback, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// getList decodes either a bare JSON array or a paginated {"results": [...]} envelope
func getList[T any](ctx context.Context, c *Client, op, endpoint string) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, op, FallbackLoad, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []T{}, nil
	}

	items := []T{}
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, &common.RequestFailure{Op: op, Status: http.StatusOK, Message: FallbackLoad, Err: err}
		}
		return items, nil
	}

	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, &common.RequestFailure{Op: op, Status: http.StatusOK, Message: FallbackLoad, Err: err}
	}
	if page.Results != nil {
		items = page.Results
	}
	return items, nil
}

func (c *Client) getBinary(ctx context.Context, op, endpoint string) (*Binary, error) {
	resp, err := c.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &common.RequestFailure{Op: op, Message: FallbackDocument, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &common.RequestFailure{Op: op, Status: resp.StatusCode, Message: FallbackDocument, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newFailure(op, FallbackDocument, resp.StatusCode, body)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return &Binary{Data: body, ContentType: contentType}, nil
}

// newFailure builds a RequestFailure whose message is taken from the body when present
func newFailure(op, fallback string, status int, body []byte) *common.RequestFailure {
	message := extractMessage(body)
	if message == "" {
		message = fallback
	}
	log.Printf("DEBUG: upstream %s returned status %d", op, status)
	return &common.RequestFailure{
		Op:      op,
		Status:  status,
		Message: message,
		Err:     fmt.Errorf("upstream returned status %d", status),
	}
}

// extractMessage reads error, message or detail, then falls back to per-field validation errors
func extractMessage(body []byte) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}

	for _, key := range []string{"error", "message", "detail"} {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%s: %s", k, v))
		case []interface{}:
			var msgs []string
			for _, m := range v {
				if s, ok := m.(string); ok {
					msgs = append(msgs, s)
				}
			}
			if len(msgs) > 0 {
				parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(msgs, " ")))
			}
		}
	}
	return strings.Join(parts, "; ")
}

// CreateTransfer posts a new transfer request
func (c *Client) CreateTransfer(ctx context.Context, payload models.CreateTransferPayload) (*models.TransferRequest, error) {
	var transfer models.TransferRequest
	if err := c.do(ctx, "create transfer", FallbackCreateTransfer, http.MethodPost, "v1/stock-transfer/", payload, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// ListTransfers returns the transfers visible to the caller
func (c *Client) ListTransfers(ctx context.Context) ([]models.TransferRequest, error) {
	return getList[models.TransferRequest](ctx, c, "list transfers", "v1/stock-transfer/")
}

// ListInTransitTransfers returns transfers on their way to the caller's branch
func (c *Client) ListInTransitTransfers(ctx context.Context) ([]models.TransferRequest, error) {
	return getList[models.TransferRequest](ctx, c, "list in-transit transfers", "v1/transfers/in-transit/")
}

// DecideTransfer approves or rejects a transfer
func (c *Client) DecideTransfer(ctx context.Context, transferID int64, payload models.DecisionPayload) (*models.DecisionResponse, error) {
	var resp models.DecisionResponse
	endpoint := fmt.Sprintf("v1/stock-transfer/approve/%d/", transferID)
	if err := c.do(ctx, "decide transfer", FallbackDecision, http.MethodPost, endpoint, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReceiveTransfer confirms an in-transit transfer arrived. The request has no body.
func (c *Client) ReceiveTransfer(ctx context.Context, transferID int64) error {
	endpoint := fmt.Sprintf("v1/warehouse/receive-transfer/%d/", transferID)
	return c.do(ctx, "receive transfer", FallbackReceiveTransfer, http.MethodPost, endpoint, nil, nil)
}

// Dispatch moves stock from the warehouse to a branch
func (c *Client) Dispatch(ctx context.Context, in models.DispatchInput) (*models.DispatchResponse, error) {
	var resp models.DispatchResponse
	if err := c.do(ctx, "dispatch stock", FallbackDispatch, http.MethodPost, "v1/warehouse/dispatch/", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Receive books inbound stock into the warehouse
func (c *Client) Receive(ctx context.Context, in models.ReceiveInput) (*models.ReceiveResponse, error) {
	var resp models.ReceiveResponse
	if err := c.do(ctx, "receive stock", FallbackReceive, http.MethodPost, "v1/warehouse/receive/", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DispatchDocument downloads the waybill for a dispatched transfer
func (c *Client) DispatchDocument(ctx context.Context, transferID int64) (*Binary, error) {
	return c.getBinary(ctx, "fetch dispatch document", fmt.Sprintf("v1/warehouse/dispatch-document/%d/", transferID))
}

// ReceivingDocument downloads the receiving note for an inbound receipt
func (c *Client) ReceivingDocument(ctx context.Context, docID int64) (*Binary, error) {
	return c.getBinary(ctx, "fetch receiving document", fmt.Sprintf("v1/warehouse/receiving-document/%d/", docID))
}

// ListNotifications returns the caller's active notifications, optionally filtered (e.g. "warehouse")
func (c *Client) ListNotifications(ctx context.Context, filter string) ([]models.Notification, error) {
	endpoint := "v1/notifications/"
	if filter != "" {
		endpoint += "?filter=" + url.QueryEscape(filter)
	}
	return getList[models.Notification](ctx, c, "list notifications", endpoint)
}

// CreateNotification posts a notification
func (c *Client) CreateNotification(ctx context.Context, in models.NotificationCreate) (*models.Notification, error) {
	var n models.Notification
	if err := c.do(ctx, "create notification", FallbackNotifications, http.MethodPost, "v1/notifications/", in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkNotificationRead marks one notification read
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("v1/notifications/%d/mark-as-read/", id)
	return c.do(ctx, "mark notification read", FallbackNotifications, http.MethodPatch, endpoint, nil, nil)
}

// MarkAllNotificationsRead marks every notification of the caller read
func (c *Client) MarkAllNotificationsRead(ctx context.Context) (*models.MarkAllResult, error) {
	var res models.MarkAllResult
	if err := c.do(ctx, "mark all notifications read", FallbackNotifications, http.MethodPost, "v1/notifications/mark-all-as-read/", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ArchiveNotification soft-deletes a notification
func (c *Client) ArchiveNotification(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("v1/notifications/%d/archive/", id)
	return c.do(ctx, "archive notification", FallbackNotifications, http.MethodPatch, endpoint, nil, nil)
}

// UnreadCount returns the caller's unread notification count
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var res models.UnreadCount
	if err := c.do(ctx, "unread count", FallbackNotifications, http.MethodGet, "v1/notifications/unread-count/", nil, &res); err != nil {
		return 0, err
	}
	return res.UnreadCount, nil
}

// ListInventory returns inventory rows; warehouse selects the central warehouse stock
func (c *Client) ListInventory(ctx context.Context, warehouse bool) ([]models.InventoryItem, error) {
	endpoint := "v1/inventory/"
	if warehouse {
		endpoint += "?warehouse=true"
	}
	return getList[models.InventoryItem](ctx, c, "list inventory", endpoint)
}

// ListMovements returns the stock movement log
func (c *Client) ListMovements(ctx context.Context) ([]models.StockMovement, error) {
	return getList[models.StockMovement](ctx, c, "list movements", "v1/stock-movement/")
}

// ListSites returns every branch and warehouse
func (c *Client) ListSites(ctx context.Context) ([]models.Site, error) {
	return getList[models.Site](ctx, c, "list sites", "v1/sites/")
}

// ListProducts returns the product catalog
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	return getList[models.Product](ctx, c, "list products", "v1/products/")
}

// ListCustomers returns registered customers
func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return getList[models.Customer](ctx, c, "list customers", "v1/customers/")
}
