package main

import (
	"encoding/json"
	"net/http"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
)

func healthHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func ledgerHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePagination(r)
		items, err := st.ListLedgerEntries(r.Context(), r.URL.Query().Get("address"), limit, offset)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":  items,
			"limit":  limit,
			"offset": offset,
		})
	}
}

func topupHandler(st store.Store, initialBalance int64) http.HandlerFunc {
	type request struct {
		Address string `json:"address"`
		Amount  int64  `json:"amount"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		addr, err := game.ParseAddress(req.Address)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if req.Amount <= 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		if err := st.EnsureAccount(r.Context(), addr, initialBalance); err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		bal, err := st.Credit(r.Context(), addr, req.Amount, "admin_topup", "admin", "topup")
		if err != nil {
			writeServiceError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"address": addr,
			"balance": bal,
		})
	}
}
