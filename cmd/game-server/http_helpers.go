package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/arena"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/challenge"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/registry"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/logging"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/proof"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
)

func apiLogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

func bodyCaptureMiddleware(maxCaptureBytes int) func(http.Handler) http.Handler {
	if maxCaptureBytes <= 0 {
		maxCaptureBytes = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqBody, err := io.ReadAll(r.Body)
			if err != nil {
				reqBody = nil
			}
			r.Body = io.NopCloser(bytes.NewReader(reqBody))

			cw := &captureWriter{ResponseWriter: w, maxBytes: maxCaptureBytes}
			next.ServeHTTP(cw, r)

			reqLog := reqBody
			if len(reqLog) > maxCaptureBytes {
				reqLog = reqLog[:maxCaptureBytes]
			}
			if len(reqLog) > 0 {
				httplog.SetAttrs(r.Context(), slog.Any("request_body", parseMaybeJSON(reqLog)))
			} else {
				httplog.SetAttrs(r.Context(), slog.Any("request_body", ""))
			}
			httplog.SetAttrs(r.Context(), slog.Any("response_body", parseMaybeJSON(cw.body.Bytes())))
			httplog.SetAttrs(r.Context(), slog.Bool("request_body_truncated", len(reqBody) > maxCaptureBytes))
			httplog.SetAttrs(r.Context(), slog.Bool("response_body_truncated", cw.truncated))
		})
	}
}

type captureWriter struct {
	http.ResponseWriter
	body      bytes.Buffer
	maxBytes  int
	truncated bool
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if !c.truncated {
		remain := c.maxBytes - c.body.Len()
		if remain > 0 {
			if len(p) <= remain {
				_, _ = c.body.Write(p)
			} else {
				_, _ = c.body.Write(p[:remain])
				c.truncated = true
			}
		} else {
			c.truncated = true
		}
	}
	return c.ResponseWriter.Write(p)
}

func parseMaybeJSON(b []byte) any {
	if len(b) == 0 {
		return ""
	}
	var out any
	if err := json.Unmarshal(b, &out); err == nil {
		return out
	}
	return string(b)
}

func writeHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

// writeServiceError maps a service-layer error onto an HTTP status and emits
// its sentinel name as the error code.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"

	for sentinel, s := range errorStatus {
		if errors.Is(err, sentinel) {
			status = s
			code = sentinel.Error()
			break
		}
	}
	writeHTTPError(w, status, code)
}

var errorStatus = map[error]int{
	arena.ErrGameNotFound:            http.StatusNotFound,
	challenge.ErrChallengeNotFound:   http.StatusNotFound,
	registry.ErrUsernameNotFound:     http.StatusNotFound,
	store.ErrNotFound:                http.StatusNotFound,
	arena.ErrNotPlayer:               http.StatusForbidden,
	challenge.ErrNotChallenged:       http.StatusForbidden,
	arena.ErrSessionInUse:            http.StatusConflict,
	arena.ErrAlreadyCommitted:        http.StatusConflict,
	arena.ErrAlreadyRevealed:         http.StatusConflict,
	arena.ErrBothPlayersNotCommitted: http.StatusConflict,
	arena.ErrGameAlreadyEnded:        http.StatusConflict,
	arena.ErrGameNotResolved:         http.StatusConflict,
	challenge.ErrAlreadyAccepted:     http.StatusConflict,
	challenge.ErrChallengeExpired:    http.StatusGone,
	proof.ErrProofVerificationFailed: http.StatusUnprocessableEntity,
	arena.ErrCommitmentMismatch:      http.StatusUnprocessableEntity,
	proof.ErrInvalidProof:            http.StatusBadRequest,
	proof.ErrInvalidPublicInputs:     http.StatusBadRequest,
	game.ErrInvalidMoveSequence:      http.StatusBadRequest,
	game.ErrInvalidAddress:           http.StatusBadRequest,
	arena.ErrSamePlayer:              http.StatusBadRequest,
	arena.ErrInvalidStake:            http.StatusBadRequest,
	challenge.ErrCannotChallengeSelf: http.StatusBadRequest,
	challenge.ErrInvalidWager:        http.StatusBadRequest,
	registry.ErrInvalidUsername:      http.StatusBadRequest,
	store.ErrInsufficientFunds:       http.StatusBadRequest,
}
