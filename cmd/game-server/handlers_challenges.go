package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/challenge"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
)

func sendChallengeHandler(ch *challenge.Service) http.HandlerFunc {
	type request struct {
		Challenger string `json:"challenger"`
		Challenged string `json:"challenged"`
		Points     int64  `json:"points"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		challenger, err := game.ParseAddress(req.Challenger)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		challenged, err := game.ParseAddress(req.Challenged)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		c, err := ch.Send(r.Context(), challenger, challenged, req.Points)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(c)
	}
}

func acceptChallengeHandler(ch *challenge.Service) http.HandlerFunc {
	type request struct {
		Player    string `json:"player"`
		SessionID uint32 `json:"session_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		challengeID := chi.URLParam(r, "challenge_id")
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
		c, err := ch.Accept(r.Context(), challengeID, player, req.SessionID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

func playerChallengesHandler(ch *challenge.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := game.ParseAddress(chi.URLParam(r, "address"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		lists, err := ch.PlayerChallenges(r.Context(), player)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(lists)
	}
}
