package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/arena"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
)

func sessionIDParam(r *http.Request) (uint32, bool) {
	raw := chi.URLParam(r, "session_id")
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

func startGameHandler(ar *arena.Service) http.HandlerFunc {
	type request struct {
		SessionID uint32 `json:"session_id"`
		Player1   string `json:"player1"`
		Player2   string `json:"player2"`
		P1Points  int64  `json:"p1_points"`
		P2Points  int64  `json:"p2_points"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		p1, err := game.ParseAddress(req.Player1)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		p2, err := game.ParseAddress(req.Player2)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		view, err := ar.StartGame(r.Context(), req.SessionID, p1, p2, req.P1Points, req.P2Points)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(view)
	}
}

func getGameHandler(ar *arena.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionIDParam(r)
		if !ok {
			writeHTTPError(w, http.StatusBadRequest, "invalid_session_id")
			return
		}
		view, err := ar.GetGame(r.Context(), sid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(view)
	}
}

func getPlaybackHandler(ar *arena.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionIDParam(r)
		if !ok {
			writeHTTPError(w, http.StatusBadRequest, "invalid_session_id")
			return
		}
		pb, err := ar.GetPlayback(r.Context(), sid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(pb)
	}
}

func commitMovesHandler(ar *arena.Service) http.HandlerFunc {
	type request struct {
		Player       string `json:"player"`
		PublicInputs []byte `json:"public_inputs"`
		Proof        []byte `json:"proof"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionIDParam(r)
		if !ok {
			writeHTTPError(w, http.StatusBadRequest, "invalid_session_id")
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		player, err := game.ParseAddress(req.Player)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		digest, err := ar.CommitMoves(r.Context(), sid, player, req.PublicInputs, req.Proof)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"proof_id": digest})
	}
}

func revealMovesHandler(ar *arena.Service) http.HandlerFunc {
	type request struct {
		Player       string      `json:"player"`
		PublicInputs []byte      `json:"public_inputs"`
		Moves        []game.Move `json:"moves"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionIDParam(r)
		if !ok {
			writeHTTPError(w, http.StatusBadRequest, "invalid_session_id")
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		player, err := game.ParseAddress(req.Player)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := ar.RevealMoves(r.Context(), sid, player, req.PublicInputs, req.Moves); err != nil {
			writeServiceError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func resolveBattleHandler(ar *arena.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionIDParam(r)
		if !ok {
			writeHTTPError(w, http.StatusBadRequest, "invalid_session_id")
			return
		}
		res, err := ar.ResolveBattle(r.Context(), sid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}
