package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/deposit"
	"auction-engine/internal/events"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/internal/settlement"
	"auction-engine/services/auction/helpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupTestRouter initializes the router with the in-memory repository for
// integration testing.
func SetupTestRouter(opts auction.Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	ledger := deposit.NewLedger(repo)
	settler := settlement.NewEngine(repo, ledger)
	service := auction.NewAuctionService(repo, ledger, settler, events.NoopPublisher{}, opts)
	return server.SetupRouter(service)
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		if w.Code == 201 {
			resp = resp["data"].(map[string]any)
		}
	}

	return resp, w
}

// CreateOpenAuction creates an auction whose bidding window is already open
// and returns its ID.
func CreateOpenAuction(t *testing.T, router *gin.Engine) string {
	t.Helper()

	now := time.Now().UTC()
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions", helpers.CreateAuctionRequest{
		PropertyID:    "prop-1",
		Title:         "Go Vap lot 24",
		StartPrice:    1_000_000,
		BidStep:       100_000,
		DepositAmount: 500_000,
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	auctionID := resp["auction_id"].(string)
	require.NotEmpty(t, auctionID)
	return auctionID
}

// PayDeposit confirms a deposit payment for a user through the webhook.
func PayDeposit(t *testing.T, router *gin.Engine, auctionID, userID string) {
	t.Helper()

	_, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/payments/webhook", helpers.DepositWebhookRequest{
		AuctionID:       auctionID,
		UserID:          userID,
		TxID:            "tx-" + userID,
		AmountConfirmed: 500_000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}
