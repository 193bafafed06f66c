package controllers

import (
	"net/http"

	"github.com/rmarasigan/printshop-pos-backend/api/middleware"
	"github.com/rmarasigan/printshop-pos-backend/api/responses"
	"github.com/rmarasigan/printshop-pos-backend/internal/stats"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
)

// StatsSession returns the cashier's session counters.
func StatsSession(svc stats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.Snapshot(r.Context(), middleware.CashierIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// StatsSessionReset zeroes the cashier's session counters.
func StatsSessionReset(svc stats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cashierID := middleware.CashierIDFromContext(r.Context())
		if err := svc.Reset(r.Context(), cashierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats.Snapshot{})
	}
}
