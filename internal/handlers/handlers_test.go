package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/helporphan/donations-api/internal/auth"
	"github.com/helporphan/donations-api/internal/awstest"
	"github.com/helporphan/donations-api/internal/wishlist"
)

const (
	testSecret     = "handler-test-secret"
	wishlistTable  = "wishlist-test"
	donationsTable = "donations-test"
	adminEmail     = "admin@wishlist.com"
)

type env struct {
	router *gin.Engine
	mock   *awstest.DynaMock
	sqs    *awstest.FakeSQS
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mock := awstest.NewDynaMock().
		AddTable(wishlistTable, "item_id").
		AddTable(donationsTable, "donation_id")
	sqs := &awstest.FakeSQS{}

	cfg := HandlerConfig{
		DynamoDBClient:   mock,
		SQSClient:        sqs,
		CloudWatchClient: &awstest.FakeCloudWatch{},
		WishlistTable:    wishlistTable,
		DonationsTable:   donationsTable,
		QueueURL:         "https://queue.test/notify",
		Verifier:         auth.NewVerifier(testSecret),
		AdminEmails:      auth.ParseAdminSet(adminEmail),
	}

	r := gin.New()
	RegisterWishlistRoutes(r, cfg)
	RegisterDonationRoutes(r, cfg)
	return &env{router: r, mock: mock, sqs: sqs}
}

func (e *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   "uid-1",
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestListWishlist_Public(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/wishlist", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["success"] != true {
		t.Fatalf("expected success envelope: %v", body)
	}
}

func TestCreateItem_AuthMatrix(t *testing.T) {
	e := newEnv(t)
	payload := map[string]interface{}{
		"item": "Blankets", "quantity": 5, "urgency": "high", "orphanage": "Sunrise Home",
	}

	if w := e.do(t, http.MethodPost, "/wishlist", "", payload); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}
	if w := e.do(t, http.MethodPost, "/wishlist", "garbage.token.here", payload); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", w.Code)
	}
	if w := e.do(t, http.MethodPost, "/wishlist", token(t, "donor@example.com"), payload); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", w.Code)
	}

	w := e.do(t, http.MethodPost, "/wishlist", token(t, adminEmail), payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	item := body["item"].(map[string]interface{})
	if item["fulfilled"] != false {
		t.Fatalf("new item must be unfulfilled: %v", item)
	}
	if item["item"] != "Blankets" || item["orphanage"] != "Sunrise Home" {
		t.Fatalf("round trip mismatch: %v", item)
	}
}

func TestCreateItem_ValidationFailure(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/wishlist", token(t, adminEmail), map[string]interface{}{
		"item": "", "quantity": 0,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateAndDelete_UnknownID(t *testing.T) {
	e := newEnv(t)
	admin := token(t, adminEmail)

	w := e.do(t, http.MethodPut, "/wishlist/missing", admin, map[string]interface{}{
		"item": "Shoes", "quantity": 1, "orphanage": "Hope House",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("PUT: expected 404, got %d: %s", w.Code, w.Body.String())
	}

	if w := e.do(t, http.MethodDelete, "/wishlist/missing", admin, nil); w.Code != http.StatusNotFound {
		t.Fatalf("DELETE: expected 404, got %d", w.Code)
	}
}

func seedItem(t *testing.T, e *env, id, name string) {
	t.Helper()
	err := e.mock.Seed(wishlistTable, wishlist.Item{
		ItemID: id, Item: name, Quantity: 1, Urgency: wishlist.UrgencyHigh, Orphanage: "Sunrise Home",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestFulfillmentPatch_PublicFlow(t *testing.T) {
	e := newEnv(t)
	seedItem(t, e, "abc123", "Shoes")

	w := e.do(t, http.MethodPatch, "/wishlist/abc123", "", map[string]interface{}{
		"fulfilled": true, "committedBy": "Asha",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	item := body["item"].(map[string]interface{})
	if item["fulfilled"] != true || item["committedBy"] != "Asha" {
		t.Fatalf("patch not applied: %v", item)
	}
}

func TestFulfillmentPatch_Validation(t *testing.T) {
	e := newEnv(t)
	seedItem(t, e, "abc123", "Shoes")

	// fulfilling without naming the donor
	w := e.do(t, http.MethodPatch, "/wishlist/abc123", "", map[string]interface{}{"fulfilled": true})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCommitDonation_FullAndPartial(t *testing.T) {
	e := newEnv(t)
	seedItem(t, e, "abc123", "Shoes")

	w := e.do(t, http.MethodPost, "/donations", "", map[string]interface{}{
		"itemId": "abc123", "donorName": "Asha", "contactEmail": "asha@example.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["partial"] != nil {
		t.Fatalf("expected full success, got partial: %v", body)
	}
	don := body["donation"].(map[string]interface{})
	if don["itemCommitted"] != "Shoes" || don["donorName"] != "Asha" {
		t.Fatalf("donation mismatch: %v", don)
	}
	if len(e.sqs.Sent()) != 1 {
		t.Fatalf("expected a queued notification, got %d", len(e.sqs.Sent()))
	}

	// unknown item: the log write still lands, response is partial
	w = e.do(t, http.MethodPost, "/donations", "", map[string]interface{}{
		"itemId": "doesnotexist", "donorName": "Binod", "contactEmail": "binod@example.com", "itemCommitted": "Socks",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 partial, got %d: %s", w.Code, w.Body.String())
	}
	body = decode(t, w)
	if body["partial"] != true || body["reason"] != "item_not_found" {
		t.Fatalf("expected partial envelope, got: %v", body)
	}
}

func TestListDonors_NewestFirst(t *testing.T) {
	e := newEnv(t)
	seedItem(t, e, "abc123", "Shoes")
	seedItem(t, e, "def456", "Blankets")

	for _, c := range []struct{ id, donor string }{
		{"abc123", "Asha"},
		{"def456", "Binod"},
	} {
		w := e.do(t, http.MethodPost, "/donations", "", map[string]interface{}{
			"itemId": c.id, "donorName": c.donor, "contactEmail": c.donor + "@example.com",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("commit %s: got %d", c.donor, w.Code)
		}
		time.Sleep(5 * time.Millisecond) // distinct commitment timestamps
	}

	w := e.do(t, http.MethodGet, "/donors", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	donors := body["donors"].([]interface{})
	if len(donors) != 2 {
		t.Fatalf("expected 2 donors, got %d", len(donors))
	}
	first := donors[0].(map[string]interface{})
	if first["donorName"] != "Binod" {
		t.Fatalf("expected newest commitment first, got %v", first["donorName"])
	}
}
