package controllers

import (
	"net/http"

	"github.com/rmarasigan/printshop-pos-backend/api/middleware"
	"github.com/rmarasigan/printshop-pos-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if terminal := middleware.TerminalIDFromContext(r.Context()); terminal != "" {
			payload["terminal_id"] = terminal
		}
		responses.WriteSuccess(w, payload)
	}
}
