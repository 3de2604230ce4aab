package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/srgjo27/driveezzy/internal/adapter/handler"
	"github.com/srgjo27/driveezzy/internal/adapter/repository/boltrepo"
	"github.com/srgjo27/driveezzy/internal/core/domain"
	"github.com/srgjo27/driveezzy/internal/core/services"
	"github.com/srgjo27/driveezzy/internal/platform/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testSecret = "test-secret"
	testCookie = "session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	store, err := boltrepo.Open(filepath.Join(t.TempDir(), "handler.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := zaptest.NewLogger(t)
	users := boltrepo.NewUserRepository(store)
	bookings := boltrepo.NewBookingRepository(store)

	hasher := security.NewArgon2Hasher(security.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	accountSvc := services.NewAccountService(users, hasher, logger)
	bookingSvc := services.NewBookingService(bookings, users, domain.DefaultRates(), logger)

	sessions := handler.NewSessionGate(handler.SessionConfig{
		Secret:     testSecret,
		CookieName: testCookie,
		TTL:        time.Hour,
	})

	return handler.NewRouter(handler.RouterConfig{
		Accounts: handler.NewAccountHandler(accountSvc, sessions, logger),
		Bookings: handler.NewBookingHandler(bookingSvc, logger),
		Sessions: sessions,
		Logger:   logger,
	})
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatalf("response carries no %s cookie", testCookie)
	return nil
}

func registerAndLogin(t *testing.T, r http.Handler, name, email string) *http.Cookie {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/register", map[string]string{
		"name":          name,
		"email":         email,
		"password":      "secret-pass",
		"mobile_number": "9876543210",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return sessionCookie(t, w)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r, "Asha", "asha@example.com")

	w := doJSON(t, r, http.MethodPost, "/register", map[string]string{
		"name":     "Other",
		"email":    "asha@example.com",
		"password": "another",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_FormEncoded(t *testing.T) {
	r := newTestRouter(t)

	form := url.Values{
		"name":          {"Ravi"},
		"email":         {"ravi@example.com"},
		"password":      {"pw"},
		"mobile_number": {"9000000000"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp services.RegisterResponse
	decode(t, w, &resp)
	_, err := uuid.Parse(resp.UserID)
	assert.NoError(t, err)
}

func TestRegister_MissingFields(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register", map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r, "Asha", "asha@example.com")

	w := doJSON(t, r, http.MethodPost, "/login", map[string]string{
		"email":    "asha@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	r := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/book/suv"},
		{http.MethodPost, "/book/suv"},
		{http.MethodGet, "/my-bookings"},
		{http.MethodPost, "/cancel-booking/" + uuid.NewString()},
	} {
		w := doJSON(t, r, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestProtectedRoutes_RejectBadTokens(t *testing.T) {
	r := newTestRouter(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	forgedToken, err := forged.SignedString([]byte("someone-else"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired": expiredToken,
		"forged":  forgedToken,
		"garbage": "not-a-jwt",
	} {
		w := doJSON(t, r, http.MethodGet, "/my-bookings", nil, &http.Cookie{Name: testCookie, Value: token})
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestBookingFlow(t *testing.T) {
	r := newTestRouter(t)
	cookie := registerAndLogin(t, r, "Asha", "asha@example.com")

	w := doJSON(t, r, http.MethodGet, "/book/suv", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var quote services.QuoteResponse
	decode(t, w, &quote)
	assert.Equal(t, int64(4000), quote.PricePerDay)

	w = doJSON(t, r, http.MethodPost, "/book/suv", map[string]string{
		"check_in":         "2024-01-01",
		"check_out":        "2024-01-04",
		"special_requests": "child seat",
		"payment_mode":     "card",
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first services.CreateBookingResponse
	decode(t, w, &first)
	assert.Equal(t, 3, first.NumDays)
	assert.Equal(t, int64(12000), first.TotalPrice)
	assert.Equal(t, "confirmed", first.Status)

	time.Sleep(2 * time.Millisecond)

	w = doJSON(t, r, http.MethodPost, "/book/hatchback", map[string]string{
		"check_in":     "2024-02-01",
		"check_out":    "2024-02-03",
		"payment_mode": "cash",
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var second services.CreateBookingResponse
	decode(t, w, &second)
	assert.Equal(t, int64(0), second.TotalPrice)

	w = doJSON(t, r, http.MethodGet, "/my-bookings", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Bookings []domain.Booking `json:"bookings"`
	}
	decode(t, w, &list)
	require.Len(t, list.Bookings, 2)
	assert.Equal(t, second.BookingID, list.Bookings[0].ID.String())
	assert.Equal(t, first.BookingID, list.Bookings[1].ID.String())

	w = doJSON(t, r, http.MethodPost, "/cancel-booking/"+first.BookingID, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/my-bookings", nil, cookie)
	var after struct {
		Bookings []domain.Booking `json:"bookings"`
	}
	decode(t, w, &after)
	require.Len(t, after.Bookings, 2)
	assert.Equal(t, domain.BookingConfirmed, after.Bookings[0].Status)
	assert.Equal(t, domain.BookingCancelled, after.Bookings[1].Status)
	assert.NotNil(t, after.Bookings[1].CancelledAt)
}

func TestCreateBooking_InvalidDate(t *testing.T) {
	r := newTestRouter(t)
	cookie := registerAndLogin(t, r, "Asha", "asha@example.com")

	w := doJSON(t, r, http.MethodPost, "/book/sedan", map[string]string{
		"check_in":     "01/02/2024",
		"check_out":    "2024-01-04",
		"payment_mode": "card",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelBooking_OtherUser(t *testing.T) {
	r := newTestRouter(t)
	owner := registerAndLogin(t, r, "Asha", "asha@example.com")
	other := registerAndLogin(t, r, "Ravi", "ravi@example.com")

	w := doJSON(t, r, http.MethodPost, "/book/sedan", map[string]string{
		"check_in":     "2024-01-01",
		"check_out":    "2024-01-02",
		"payment_mode": "card",
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code)
	var created services.CreateBookingResponse
	decode(t, w, &created)

	w = doJSON(t, r, http.MethodPost, "/cancel-booking/"+created.BookingID, nil, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/my-bookings", nil, other)
	var list struct {
		Bookings []domain.Booking `json:"bookings"`
	}
	decode(t, w, &list)
	assert.Empty(t, list.Bookings)
}

func TestCancelBooking_NotFound(t *testing.T) {
	r := newTestRouter(t)
	cookie := registerAndLogin(t, r, "Asha", "asha@example.com")

	w := doJSON(t, r, http.MethodPost, "/cancel-booking/"+uuid.NewString(), nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/cancel-booking/not-a-uuid", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	c := sessionCookie(t, w)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/car-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		CarTypes []domain.CarRate `json:"car_types"`
	}
	decode(t, w, &resp)
	assert.Len(t, resp.CarTypes, 3)

	w = doJSON(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRateLimiter(t *testing.T) {
	mw, err := handler.NewRateLimiter("2-M", "test", nil)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/login", mw, func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, "/login", nil)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewRateLimiter_BadFormat(t *testing.T) {
	_, err := handler.NewRateLimiter("ten per minute", "test", nil)
	assert.Error(t, err)
}
