package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"connection-travels/internal/auth"
	intconfig "connection-travels/internal/config"
	"connection-travels/internal/domain"
	"connection-travels/internal/domain/models"
	h "connection-travels/internal/http/handlers"
	"connection-travels/internal/realtime"
	"connection-travels/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router   *gin.Engine
	hub      *realtime.Hub
	tokens   auth.Issuer
	bookings *bookingStore
	audit    *auditStore
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bookings := &bookingStore{rows: map[string]models.Booking{}}
	users := &userStore{
		users: map[string]models.User{},
		profiles: map[string]models.OwnerProfile{
			"own-1": {ID: "own-1", UserID: "u-owner", CompanyName: "Sunrise", VerifiedByAdmin: true},
			"own-2": {ID: "own-2", UserID: "u-owner-2", CompanyName: "Nightline"},
		},
	}
	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	buses := &busStore{owners: users, rows: map[string]models.Bus{
		"bus-1": {ID: "bus-1", OwnerID: "own-1", Title: "Volvo 45", RegistrationNo: "KA01", Capacity: 45,
			ApprovalStatus: models.ApprovalApproved, Active: true, CreatedAt: created},
		"bus-2": {ID: "bus-2", OwnerID: "own-1", Title: "Mini", ApprovalStatus: models.ApprovalPending,
			CreatedAt: created.Add(time.Hour)},
		"bus-3": {ID: "bus-3", OwnerID: "own-2", Title: "Night Rider", RegistrationNo: "KA03", Capacity: 35,
			ApprovalStatus: models.ApprovalApproved, Active: true, CreatedAt: created},
	}}
	audit := &auditStore{}
	hub := realtime.NewHub()
	tokens := auth.Issuer{Secret: []byte("route-secret"), AccessTTL: time.Hour, RefreshTTL: time.Hour}

	hs := h.Handlers{
		Bookings: services.BookingService{Bookings: bookings, Buses: buses, Audit: audit, Publisher: hub},
		Buses:    services.BusService{Buses: buses, Users: users, Audit: audit, Publisher: hub},
		Auth:     services.AuthService{Users: users, Tokens: tokens, BcryptCost: bcrypt.MinCost},
		Audit:    services.AuditService{Audit: audit},
		Docs:     services.DocsService{Bookings: bookings, Buses: buses},
		Hub:      hub,
		Upgrader: realtime.NewUpgrader(nil),
		Tokens:   tokens,
	}
	env := intconfig.Env{CORSOrigins: []string{"http://localhost:5173"}}
	return testServer{router: NewRouter(env, hs), hub: hub, tokens: tokens, bookings: bookings, audit: audit}
}

func (s testServer) token(t *testing.T, rc domain.RequestContext) string {
	t.Helper()
	pair, err := s.tokens.IssuePair(rc)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	return pair.AccessToken
}

func (s testServer) call(method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

var (
	adminRC    = domain.RequestContext{UserID: "u-admin", Role: domain.RoleAdmin}
	ownerRC    = domain.RequestContext{UserID: "u-owner", Role: domain.RoleOwner, OwnerID: "own-1"}
	customerRC = domain.RequestContext{UserID: "u-cust", Role: domain.RoleCustomer}
)

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func quoteBody(busID string) gin.H {
	return gin.H{
		"busId": busID,
		"travelDetails": gin.H{
			"pickupLocation": "Airport",
			"startDate":      "2025-03-10",
			"passengers":     40,
		},
	}
}

func TestNegotiationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin, owner, customer := s.token(t, adminRC), s.token(t, ownerRC), s.token(t, customerRC)

	w := s.call(http.MethodPost, "/api/bookings", customer, quoteBody("bus-1"))
	if w.Code != http.StatusCreated {
		t.Fatalf("create quote: %d %s", w.Code, w.Body.String())
	}
	created := decode[models.CustomerBookingView](t, w)
	if created.Status != models.StatusQuoteRequested {
		t.Fatalf("unexpected status %s", created.Status)
	}
	path := "/api/admin/quotes/" + created.ID

	if w := s.call(http.MethodPatch, path, admin, gin.H{"status": "DELETED"}); w.Code != http.StatusBadRequest {
		t.Fatalf("unsupported status should be 400, got %d", w.Code)
	}
	if w := s.call(http.MethodPatch, path, admin, gin.H{"status": "PRICE_FINALIZED", "ownerPayoutPrice": 40000, "userFinalPrice": 48000}); w.Code != http.StatusOK {
		t.Fatalf("negotiate: %d %s", w.Code, w.Body.String())
	}
	if w := s.call(http.MethodPost, path+"/lock-owner", admin, gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("lock without price should be 400, got %d", w.Code)
	}
	w = s.call(http.MethodPost, path+"/lock-owner", admin, gin.H{"ownerPayoutPrice": 40000})
	if got := decode[models.Booking](t, w); got.Status != models.StatusAwaitingPayment {
		t.Fatalf("expected AWAITING_PAYMENT, got %s", got.Status)
	}
	s.call(http.MethodPatch, path, admin, gin.H{"ownerPayoutPrice": 50000})
	w = s.call(http.MethodPost, path+"/lock-user", admin, gin.H{"userFinalPrice": 48000})
	final := decode[models.Booking](t, w)
	if final.Status != models.StatusConfirmed || *final.OwnerPayoutPrice != 40000 || *final.UserFinalPrice != 48000 {
		t.Fatalf("unexpected final booking %+v", final)
	}

	w = s.call(http.MethodGet, "/api/bookings/"+created.ID, customer, nil)
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), "ownerPayoutPrice") {
		t.Fatalf("customer read leaked payout or failed: %d %s", w.Code, w.Body.String())
	}
	other := s.token(t, domain.RequestContext{UserID: "u-other", Role: domain.RoleCustomer})
	if w := s.call(http.MethodGet, "/api/bookings/"+created.ID, other, nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign booking should be 404, got %d", w.Code)
	}

	w = s.call(http.MethodGet, "/api/owners/own-1/bookings", owner, nil)
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), "userFinalPrice") {
		t.Fatalf("owner read leaked customer price or failed: %d %s", w.Code, w.Body.String())
	}
	if w := s.call(http.MethodPost, "/api/owners/own-1/bookings/"+created.ID+"/confirm", owner, nil); w.Code != http.StatusOK {
		t.Fatalf("owner confirm: %d %s", w.Code, w.Body.String())
	}

	w = s.call(http.MethodGet, "/api/bookings/"+created.ID+"/confirmation.pdf", customer, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("confirmation pdf: %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	w = s.call(http.MethodGet, "/api/admin/audit?entity=Booking&entityId="+created.ID, admin, nil)
	if entries := decode[[]models.AuditEntry](t, w); len(entries) != 4 {
		t.Fatalf("expected 4 audit rows, got %d", len(entries))
	}
}

func TestQuoteValidationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	customer := s.token(t, customerRC)

	if w := s.call(http.MethodPost, "/api/bookings", customer, quoteBody("bus-2")); w.Code != http.StatusNotFound {
		t.Fatalf("pending bus should be 404, got %d", w.Code)
	}
	body := quoteBody("bus-1")
	body["travelDetails"] = gin.H{"pickupLocation": "Airport", "startDate": "2025-03-10"}
	w := s.call(http.MethodPost, "/api/bookings", customer, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing passengers should be 400, got %d", w.Code)
	}
	if resp := decode[h.ErrorResponse](t, w); resp.Code != "validation_error" || resp.RequestID == "" {
		t.Fatalf("unexpected error body %+v", resp)
	}
	if len(s.bookings.rows) != 0 {
		t.Fatalf("no booking should be stored")
	}
}

func TestRouteAuthorization(t *testing.T) {
	s := newTestServer(t)
	customer, owner := s.token(t, customerRC), s.token(t, ownerRC)

	cases := []struct {
		method, path, bearer string
		want                 int
	}{
		{http.MethodGet, "/api/admin/quotes", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/quotes", customer, http.StatusForbidden},
		{http.MethodGet, "/api/owners/own-2/bookings", owner, http.StatusForbidden},
		{http.MethodPost, "/api/bookings", owner, http.StatusForbidden},
		{http.MethodGet, "/api/buses", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		if w := s.call(tc.method, tc.path, tc.bearer, nil); w.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, w.Code)
		}
	}
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)
	reg := gin.H{"email": "asha@example.com", "password": "s3cret-pass", "firstName": "Asha"}

	if w := s.call(http.MethodPost, "/api/auth/register", "", reg); w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	if w := s.call(http.MethodPost, "/api/auth/register", "", reg); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register should be 409, got %d", w.Code)
	}
	if w := s.call(http.MethodPost, "/api/auth/register", "", gin.H{"email": "b@example.com", "password": "s3cret-pass", "firstName": "  "}); w.Code != http.StatusBadRequest {
		t.Fatalf("blank first name should be 400, got %d", w.Code)
	}
	if w := s.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "nope-nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password should be 401, got %d", w.Code)
	}

	w := s.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "s3cret-pass"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	login := decode[services.LoginResult](t, w)

	w = s.call(http.MethodGet, "/api/auth/me", login.AccessToken, nil)
	if me := decode[models.User](t, w); w.Code != http.StatusOK || me.Email != "asha@example.com" {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestOwnerBusLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner, admin := s.token(t, ownerRC), s.token(t, adminRC)

	w := s.call(http.MethodPost, "/api/owners/own-1/buses", owner, gin.H{"title": "Sleeper", "registrationNo": "ka05", "capacity": 30})
	if w.Code != http.StatusCreated {
		t.Fatalf("create bus: %d %s", w.Code, w.Body.String())
	}
	bus := decode[models.Bus](t, w)

	w = s.call(http.MethodGet, "/api/admin/buses/pending", admin, nil)
	if pending := decode[[]models.Bus](t, w); len(pending) != 2 {
		t.Fatalf("expected two pending buses, got %d", len(pending))
	}
	if w := s.call(http.MethodPost, "/api/admin/buses/"+bus.ID+"/approve", admin, nil); w.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", w.Code, w.Body.String())
	}
	w = s.call(http.MethodPatch, "/api/owners/own-1/buses/"+bus.ID, owner, gin.H{"capacity": 32})
	if patched := decode[models.Bus](t, w); patched.ApprovalStatus != models.ApprovalPending {
		t.Fatalf("capacity change should demote, got %s", patched.ApprovalStatus)
	}
	if w := s.call(http.MethodPost, "/api/admin/owners/own-1/approve", admin, nil); w.Code != http.StatusOK {
		t.Fatalf("approve owner: %d %s", w.Code, w.Body.String())
	}
}

func TestPublicCatalogueHidesUnverifiedOwners(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, adminRC)

	ids := func() []string {
		w := s.call(http.MethodGet, "/api/buses", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("list buses: %d %s", w.Code, w.Body.String())
		}
		out := []string{}
		for _, b := range decode[[]models.Bus](t, w) {
			out = append(out, b.ID)
		}
		sort.Strings(out)
		return out
	}

	if got := ids(); strings.Join(got, ",") != "bus-1" {
		t.Fatalf("unverified owner's bus should stay hidden, got %v", got)
	}
	if w := s.call(http.MethodPost, "/api/admin/owners/own-2/approve", admin, nil); w.Code != http.StatusOK {
		t.Fatalf("approve owner: %d %s", w.Code, w.Body.String())
	}
	if got := ids(); strings.Join(got, ",") != "bus-1,bus-3" {
		t.Fatalf("verified owner's bus should be listed, got %v", got)
	}
}

func TestOwnerFleetListing(t *testing.T) {
	s := newTestServer(t)
	owner, admin := s.token(t, ownerRC), s.token(t, adminRC)

	note := "registration copy unreadable"
	if w := s.call(http.MethodPost, "/api/admin/buses/bus-2/reject", admin, gin.H{"note": note}); w.Code != http.StatusOK {
		t.Fatalf("reject: %d %s", w.Code, w.Body.String())
	}

	w := s.call(http.MethodGet, "/api/owners/own-1/buses", owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner fleet: %d %s", w.Code, w.Body.String())
	}
	fleet := decode[[]models.Bus](t, w)
	if len(fleet) != 2 || fleet[0].ID != "bus-2" || fleet[1].ID != "bus-1" {
		t.Fatalf("expected own buses newest first, got %+v", fleet)
	}
	if fleet[0].ApprovalStatus != models.ApprovalRejected || fleet[0].ApprovalNote == nil || *fleet[0].ApprovalNote != note {
		t.Fatalf("rejected bus should carry its note, got %+v", fleet[0])
	}

	if w := s.call(http.MethodGet, "/api/owners/own-2/buses", owner, nil); w.Code != http.StatusForbidden {
		t.Fatalf("foreign fleet should be 403, got %d", w.Code)
	}
	if w := s.call(http.MethodGet, "/api/owners/own-2/buses", admin, nil); w.Code != http.StatusOK {
		t.Fatalf("admin should read any fleet, got %d", w.Code)
	}
	if w := s.call(http.MethodGet, "/api/owners/own-1/buses", s.token(t, customerRC), nil); w.Code != http.StatusForbidden {
		t.Fatalf("customer should be 403, got %d", w.Code)
	}
}

func TestRealtimeHandshake(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/realtime"

	owner := s.token(t, ownerRC)
	_, resp, err := websocket.DefaultDialer.Dial(base+"?role=owner&ownerId=own-2&token="+owner, nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("mismatched ownerId should be refused with 403, got %v", err)
	}

	admin := s.token(t, adminRC)
	conn, _, err := websocket.DefaultDialer.Dial(base+"?role=admin&token="+admin, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.RoomSize(realtime.Admins) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never joined the admins room")
		}
		time.Sleep(10 * time.Millisecond)
	}

	customer := s.token(t, customerRC)
	if w := s.call(http.MethodPost, "/api/bookings", customer, quoteBody("bus-1")); w.Code != http.StatusCreated {
		t.Fatalf("create quote: %d", w.Code)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg realtime.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if msg.Event != realtime.EventQuoteRequested || msg.Audience != realtime.Admins {
		t.Fatalf("unexpected frame %+v", msg)
	}
}
