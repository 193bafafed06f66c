package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarasigan/printshop-pos-backend/api/middleware"
	"github.com/rmarasigan/printshop-pos-backend/internal/cart"
	"github.com/rmarasigan/printshop-pos-backend/internal/session"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
	"github.com/rmarasigan/printshop-pos-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withTerminal(terminalID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithTerminalID(r.Context(), terminalID)
			ctx = middleware.WithCashierID(ctx, "c-1")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newCartRouter(t *testing.T) http.Handler {
	t.Helper()

	svc, err := cart.NewService(session.NewMemoryStore())
	require.NoError(t, err)

	logg := testLogger()
	r := chi.NewRouter()
	r.Use(withTerminal("T1"))
	r.Get("/cart", CartGet(svc, logg))
	r.Delete("/cart", CartClear(svc, logg))
	r.Post("/cart/lines", CartAddLine(svc, logg))
	r.Patch("/cart/lines/{lineId}", CartUpdateLine(svc, logg))
	r.Delete("/cart/lines/{lineId}", CartRemoveLine(svc, logg))
	return r
}

func decodeTransaction(t *testing.T, body io.Reader) transactionView {
	t.Helper()
	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var view transactionView
	require.NoError(t, json.Unmarshal(raw, &view))
	return view
}

func TestCartGetStartsEmpty(t *testing.T) {
	t.Parallel()

	router := newCartRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.Equal(t, http.StatusOK, w.Code)
	view := decodeTransaction(t, w.Body)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Subtotal.IsZero())
	assert.False(t, view.Discount.Unlocked)
}

func TestCartAddLineAndUpdateQuantity(t *testing.T) {
	t.Parallel()

	router := newCartRouter(t)

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"name":"Tarpaulin 3x6","unit_price":"250.00","quantity":2}`)
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart/lines", body))
	require.Equal(t, http.StatusCreated, w.Code)

	view := decodeTransaction(t, w.Body)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "500", view.Subtotal.String())
	assert.Equal(t, 2, view.TotalQuantity)

	lineID := view.Lines[0].ID.String()

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/cart/lines/"+lineID, strings.NewReader(`{"quantity":5}`)))
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeTransaction(t, w.Body)
	assert.Equal(t, 5, view.TotalQuantity)

	// A zero quantity is ignored, not treated as removal.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/cart/lines/"+lineID, strings.NewReader(`{"quantity":0}`)))
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeTransaction(t, w.Body)
	assert.Equal(t, 5, view.TotalQuantity)
	assert.Len(t, view.Lines, 1)
}

func TestCartAddLineRejectsBadBody(t *testing.T) {
	t.Parallel()

	router := newCartRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart/lines", strings.NewReader(`{"quantity":1}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestCartRemoveLineAndClear(t *testing.T) {
	t.Parallel()

	router := newCartRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart/lines", strings.NewReader(`{"name":"Mug","unit_price":"120","quantity":1}`)))
	require.Equal(t, http.StatusCreated, w.Code)
	view := decodeTransaction(t, w.Body)
	lineID := view.Lines[0].ID.String()

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/lines/"+lineID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeTransaction(t, w.Body)
	assert.Empty(t, view.Lines)

	// Unknown line id resolves to 404.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/lines/"+lineID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartUpdateLineRejectsMalformedID(t *testing.T) {
	t.Parallel()

	router := newCartRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/cart/lines/not-a-uuid", strings.NewReader(`{"quantity":1}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
