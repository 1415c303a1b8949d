package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/registry"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
)

func addressParam(r *http.Request) (game.Address, error) {
	return game.ParseAddress(chi.URLParam(r, "address"))
}

func playerAccountHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, err := addressParam(r)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		bal, err := st.GetBalance(r.Context(), addr)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// An address that never played simply has no balance yet.
				bal = 0
			} else {
				writeServiceError(w, err)
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"address": addr,
			"balance": bal,
		})
	}
}

func getUsernameHandler(reg *registry.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, err := addressParam(r)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		name, err := reg.GetUsername(r.Context(), addr)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"address":  addr,
			"username": name,
		})
	}
}

func setUsernameHandler(reg *registry.Service) http.HandlerFunc {
	type request struct {
		Username string `json:"username"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		addr, err := addressParam(r)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := reg.SetUsername(r.Context(), addr, req.Username); err != nil {
			writeServiceError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
