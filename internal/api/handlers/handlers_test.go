package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"farm-coop-api-server/config"
	"farm-coop-api-server/internal/api/routes"
	"farm-coop-api-server/internal/auth"
	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/socket"
	"farm-coop-api-server/internal/store"
	"farm-coop-api-server/internal/viewmodel"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	store  *store.MemoryStore
	router *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := store.NewMemoryStore()
	cfg := config.Config{
		Server: config.ServerConfig{Port: "0"},
		JWT:    config.JWTConfig{Expiration: "1h"},
	}
	return &env{
		store:  s,
		router: routes.SetupRouter(cfg, s, nil, socket.NewHub()),
	}
}

func (e *env) createUser(t *testing.T, email, password, role string) {
	t.Helper()
	e.createNamedUser(t, email, password, role, "Test", "User")
}

func (e *env) createNamedUser(t *testing.T, email, password, role, firstname, lastname string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	uid := ""
	vm := viewmodel.NewUserViewModel(e.store)
	vm.AddUser(context.Background(),
		models.UserData{Email: email, Firstname: firstname, Lastname: lastname, Password: hash, Role: role},
		func(key string, _ models.UserData) { uid = key },
		func(err error) { t.Fatalf("AddUser: %v", err) },
	)
	return uid
}

func (e *env) seedItem(t *testing.T, farmerUID, name string, quantity int) string {
	t.Helper()
	key := e.store.GenerateKey("items/" + farmerUID)
	err := e.store.Write(context.Background(), "items/"+farmerUID+"/"+key,
		models.ItemData{Name: name, Quantity: quantity, Price: 40})
	if err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	return key
}

func (e *env) placeOrder(t *testing.T, token, product string, quantity int) models.OrderData {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/client/orders", token, map[string]interface{}{
		"product":  map[string]interface{}{"name": product, "quantity": quantity, "type": "vegetable"},
		"barangay": "Poblacion",
		"street":   "Main St",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("place order: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var placed models.OrderData
	if err := json.Unmarshal(rec.Body.Bytes(), &placed); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	return placed
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
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestLoginRejectsBadPassword(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "juan@farm.com", "correct-horse", "client")

	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "juan@farm.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRegisterAlwaysCreatesClient(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     "new@farm.com",
		"password":  "longenough",
		"firstname": "New",
		"lastname":  "User",
		"role":      "admin", // must be ignored on self-registration
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User models.UserData `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Role != "client" {
		t.Errorf("role = %s, want client", resp.User.Role)
	}
	if resp.User.Password != "" {
		t.Error("password hash leaked in response")
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "juan@farm.com", "correct-horse", "client")
	clientToken := e.login(t, "juan@farm.com", "correct-horse")

	if rec := e.do(t, http.MethodGet, "/api/v1/client/orders", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/api/v1/coop/orders", clientToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("client on coop route: status = %d, want 403", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/api/v1/client/orders", clientToken, nil); rec.Code != http.StatusOK {
		t.Errorf("own orders: status = %d, want 200", rec.Code)
	}
}

func TestVendorToggleEndpoint(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "coop@farm.com", "correct-horse", "coop")
	coopToken := e.login(t, "coop@farm.com", "correct-horse")

	rec := e.do(t, http.MethodPost, "/api/v1/coop/vendors/", coopToken,
		models.VendorData{Email: "v@farm.com", CompanyName: "Vexco"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create vendor: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/api/v1/coop/vendors/v@farm.com/toggle", coopToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var vendor models.VendorData
	if err := json.Unmarshal(rec.Body.Bytes(), &vendor); err != nil {
		t.Fatalf("decode vendor: %v", err)
	}
	if !vendor.IsActive {
		t.Error("first toggle must activate the vendor")
	}

	rec = e.do(t, http.MethodPost, "/api/v1/coop/vendors/v@farm.com/toggle", coopToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second toggle: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &vendor); err != nil {
		t.Fatalf("decode vendor: %v", err)
	}
	if vendor.IsActive {
		t.Error("second toggle must deactivate the vendor")
	}

	rec = e.do(t, http.MethodPost, "/api/v1/coop/vendors/nobody@farm.com/toggle", coopToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown vendor: status = %d, want 404", rec.Code)
	}
}

func TestCancelOrderScopedToOwner(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice@farm.com", "correct-horse", "client")
	e.createUser(t, "mallory@farm.com", "correct-horse", "client")
	aliceToken := e.login(t, "alice@farm.com", "correct-horse")
	malloryToken := e.login(t, "mallory@farm.com", "correct-horse")

	placed := e.placeOrder(t, aliceToken, "Tomato", 10)
	cancelURL := fmt.Sprintf("/api/v1/client/orders/%s/cancel", placed.OrderID)

	// Another client cannot cancel an order they do not own.
	rec := e.do(t, http.MethodPost, cancelURL, malloryToken, nil)
	if rec.Code == http.StatusOK {
		t.Fatalf("foreign cancel succeeded: body %s", rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/api/v1/client/orders", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list orders: status = %d", rec.Code)
	}
	var listing struct {
		Data []models.OrderData `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Data) != 1 || listing.Data[0].Status != "PENDING" {
		t.Fatalf("order after foreign cancel = %+v", listing.Data)
	}

	// The owner can.
	rec = e.do(t, http.MethodPost, cancelURL, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("own cancel: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var cancelled models.OrderData
	if err := json.Unmarshal(rec.Body.Bytes(), &cancelled); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if cancelled.Status != "CANCELLED" {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
}

func TestAdvanceStatusUsesCallerIdentity(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "client@farm.com", "correct-horse", "client")
	e.createUser(t, "coop@farm.com", "correct-horse", "coop")
	juanUID := e.createNamedUser(t, "juan@farm.com", "correct-horse", "farmer", "Juan", "")
	pedroUID := e.createNamedUser(t, "pedro@farm.com", "correct-horse", "farmer", "Pedro", "")
	e.seedItem(t, juanUID, "Tomato", 50)
	e.seedItem(t, pedroUID, "Tomato", 50)

	clientToken := e.login(t, "client@farm.com", "correct-horse")
	coopToken := e.login(t, "coop@farm.com", "correct-horse")
	juanToken := e.login(t, "juan@farm.com", "correct-horse")

	placed := e.placeOrder(t, clientToken, "Tomato", 30)
	rec := e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/coop/orders/%s/decision", placed.OrderID), coopToken,
		map[string]interface{}{
			"decision": "accept",
			"farmers": []map[string]string{
				{"uid": juanUID, "name": "Juan"},
				{"uid": pedroUID, "name": "Pedro"},
			},
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Juan names Pedro in the body; only Juan's own entry may move.
	rec = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/farmer/orders/%s/status", placed.OrderID), juanToken,
		map[string]string{"status": "PREPARING", "farmerName": "Pedro"})
	if rec.Code != http.StatusOK {
		t.Fatalf("advance: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var advanced models.OrderData
	if err := json.Unmarshal(rec.Body.Bytes(), &advanced); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	for _, entry := range advanced.FulfilledBy {
		switch entry.FarmerName {
		case "Juan":
			if entry.Status != "PREPARING" {
				t.Errorf("Juan = %s, want PREPARING", entry.Status)
			}
		case "Pedro":
			if entry.Status != "ACCEPTED" {
				t.Errorf("Pedro = %s, want ACCEPTED", entry.Status)
			}
		}
	}
}

func TestFarmerDecidesOrderAlone(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "client@farm.com", "correct-horse", "client")
	juanUID := e.createNamedUser(t, "juan@farm.com", "correct-horse", "farmer", "Juan", "")
	itemKey := e.seedItem(t, juanUID, "Tomato", 50)

	clientToken := e.login(t, "client@farm.com", "correct-horse")
	juanToken := e.login(t, "juan@farm.com", "correct-horse")

	placed := e.placeOrder(t, clientToken, "Tomato", 30)

	// Accepting without naming farmers fulfills the order alone.
	rec := e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/farmer/orders/%s/decision", placed.OrderID), juanToken,
		map[string]string{"decision": "accept"})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var accepted models.OrderData
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if accepted.Status != "ACCEPTED" {
		t.Errorf("status = %s, want ACCEPTED", accepted.Status)
	}
	if len(accepted.FulfilledBy) != 0 {
		t.Errorf("single-farmer order must not split: %+v", accepted.FulfilledBy)
	}

	snap, err := e.store.Read(context.Background(), "items/"+juanUID+"/"+itemKey)
	if err != nil {
		t.Fatalf("Read inventory: %v", err)
	}
	var item models.ItemData
	if err := snap.Decode(&item); err != nil {
		t.Fatalf("Decode inventory: %v", err)
	}
	if item.Quantity != 20 {
		t.Errorf("inventory = %d, want 20", item.Quantity)
	}
}

func TestOrderFlowEndToEnd(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "client@farm.com", "correct-horse", "client")
	e.createUser(t, "coop@farm.com", "correct-horse", "coop")

	// Seed the farmer's inventory directly.
	farmerUID := e.store.GenerateKey("users")
	itemKey := e.store.GenerateKey("items/" + farmerUID)
	err := e.store.Write(context.Background(), "items/"+farmerUID+"/"+itemKey,
		models.ItemData{Name: "Tomato", Quantity: 50, Price: 40})
	if err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	clientToken := e.login(t, "client@farm.com", "correct-horse")
	coopToken := e.login(t, "coop@farm.com", "correct-horse")

	// Client places an order.
	rec := e.do(t, http.MethodPost, "/api/v1/client/orders", clientToken, map[string]interface{}{
		"product":  map[string]interface{}{"name": "Tomato", "quantity": 30, "type": "vegetable"},
		"barangay": "Poblacion",
		"street":   "Main St",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("place order: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var placed models.OrderData
	if err := json.Unmarshal(rec.Body.Bytes(), &placed); err != nil {
		t.Fatalf("decode order: %v", err)
	}

	// Coop sees it in the cross-client listing.
	rec = e.do(t, http.MethodGet, "/api/v1/coop/orders?status=PENDING", coopToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list orders: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var listing struct {
		Data []models.OrderData `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Data) != 1 || listing.Data[0].OrderID != placed.OrderID {
		t.Fatalf("listing = %+v", listing.Data)
	}

	// Coop accepts with one farmer.
	decideURL := fmt.Sprintf("/api/v1/coop/orders/%s/decision", placed.OrderID)
	rec = e.do(t, http.MethodPost, decideURL, coopToken, map[string]interface{}{
		"decision": "accept",
		"farmers":  []map[string]string{{"uid": farmerUID, "name": "Juan"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var accepted models.OrderData
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode accepted: %v", err)
	}
	if accepted.Status != "ACCEPTED" {
		t.Errorf("status = %s, want ACCEPTED", accepted.Status)
	}

	// The farmer's inventory dropped by the full quantity.
	snap, err := e.store.Read(context.Background(), "items/"+farmerUID+"/"+itemKey)
	if err != nil {
		t.Fatalf("Read inventory: %v", err)
	}
	var item models.ItemData
	if err := snap.Decode(&item); err != nil {
		t.Fatalf("Decode inventory: %v", err)
	}
	if item.Quantity != 20 {
		t.Errorf("inventory = %d, want 20", item.Quantity)
	}

	// Accepting twice is a conflict: the order is no longer pending.
	rec = e.do(t, http.MethodPost, decideURL, coopToken, map[string]interface{}{
		"decision": "accept",
		"farmers":  []map[string]string{{"uid": farmerUID, "name": "Juan"}},
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("double accept: status = %d, want 409", rec.Code)
	}
}
