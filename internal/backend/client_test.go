package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockbridge/internal/common"
	"stockbridge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, context.Context) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ctx := common.WithCaller(context.Background(), 7, "token-abc")
	return NewClient(server.URL+"/api", 5*time.Second), ctx
}

func TestCreateTransfer_SendsPendingPayload(t *testing.T) {
	var got map[string]interface{}
	client, ctx := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/stock-transfer/", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 91, "product": 42, "quantity": 5, "transfer_status": "PENDING", "details": ""}`))
	})

	transfer, err := client.CreateTransfer(ctx, models.CreateTransferPayload{
		Product:        42,
		Quantity:       5,
		TransferStatus: models.TransferStatusPending,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(91), transfer.ID)
	assert.Equal(t, float64(42), got["product"])
	assert.Equal(t, float64(5), got["quantity"])
	assert.Equal(t, "PENDING", got["transfer_status"])
	_, hasFromBranch := got["from_branch"]
	assert.False(t, hasFromBranch)
}

func TestRequestFailure_MessageExtraction(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error key", http.StatusBadRequest, `{"error": "Insufficient stock"}`, "Insufficient stock"},
		{"detail key", http.StatusForbidden, `{"detail": "You do not have permission"}`, "You do not have permission"},
		{"field errors", http.StatusBadRequest, `{"quantity": ["Ensure this value is greater than 0."], "product": ["This field is required."]}`, "product: This field is required.; quantity: Ensure this value is greater than 0."},
		{"no body", http.StatusInternalServerError, ``, FallbackCreateTransfer},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, FallbackCreateTransfer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, ctx := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.CreateTransfer(ctx, models.CreateTransferPayload{Product: 1, Quantity: 1})
			var failure *common.RequestFailure
			require.True(t, errors.As(err, &failure))
			assert.Equal(t, tc.status, failure.Status)
			assert.Equal(t, tc.message, failure.Message)
		})
	}
}

func TestTransportFailure_HasZeroStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL+"/api/", time.Second)
	_, err := client.Dispatch(context.Background(), models.DispatchInput{ProductID: 1, Quantity: 1, DestinationID: 2})

	var failure *common.RequestFailure
	require.True(t, errors.As(err, &failure))
	assert.True(t, failure.Transport())
	assert.Equal(t, FallbackDispatch, failure.Message)
}

func TestDecideTransfer_RejectBody(t *testing.T) {
	var got map[string]interface{}
	client, ctx := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stock-transfer/approve/91/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message": "Transfer rejected", "transfer": {"id": 91, "metadata": {"status": "REJECTED", "rejection_reason": "Insufficient stock"}}}`))
	})

	reason := "Insufficient stock"
	resp, err := client.DecideTransfer(ctx, 91, models.DecisionPayload{Action: models.DecisionReject, RejectionReason: &reason})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"action": "reject", "rejection_reason": "Insufficient stock"}, got)
	require.NotNil(t, resp.Transfer)
	assert.Equal(t, "REJECTED", resp.Transfer.Metadata.Status)
}

func TestDecideTransfer_ApproveBodyOmitsReason(t *testing.T) {
	var got map[string]interface{}
	client, ctx := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message": "ok"}`))
	})

	_, err := client.DecideTransfer(ctx, 3, models.DecisionPayload{Action: models.DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"action": "approve"}, got)
}

func TestReceiveTransfer_EmptyBody(t *testing.T) {
	client, ctx := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/warehouse/receive-transfer/91/", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.ReceiveTransfer(ctx, 91))
}

func TestListNotifications_PaginatedAndBare(t *testing.T) {
	paginated := true
	client, ctx := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "warehouse", r.URL.Query().Get("filter"))
		if paginated {
			_, _ = w.Write([]byte(`{"count": 1, "results": [{"id": 1, "notification_type": "TRANSFER_REQUEST", "recipient": 7, "is_read": false}]}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id": 2, "notification_type": "SYSTEM", "recipient": {"id": 7, "username": "wh"}, "is_read": true}]`))
	})

	list, err := client.ListNotifications(ctx, "warehouse")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].Recipient.ID)

	paginated = false
	list, err = client.ListNotifications(ctx, "warehouse")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "wh", list[0].Recipient.Username)
}

func TestDispatchDocument_Binary(t *testing.T) {
	client, ctx := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/warehouse/dispatch-document/12/", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})

	doc, err := client.DispatchDocument(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), doc.Data)
}

func TestUnreadCount(t *testing.T) {
	client, ctx := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notifications/unread-count/", r.URL.Path)
		_, _ = w.Write([]byte(`{"unread_count": 4}`))
	})

	count, err := client.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
