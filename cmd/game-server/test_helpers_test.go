package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/arena"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/challenge"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/registry"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/config"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/ledger"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/proof"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
)

type testServer struct {
	srv   *httptest.Server
	store store.Store
	arena *arena.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.ServerConfig{
		StoreBackend:        "memory",
		ProofMode:           "insecure",
		AdminAPIKey:         "test-admin-key",
		ChallengeTTLMinutes: 1440,
		InitialBalance:      100000,
	}
	st := store.NewMemory()
	led := ledger.New(st)
	ar := arena.NewService(st, led, proof.Insecure{}, cfg.InitialBalance)
	ch := challenge.NewService(st, ar, time.Duration(cfg.ChallengeTTLMinutes)*time.Minute)
	ar.OnResolved = ch.CompleteForSession
	reg := registry.NewService(st)

	srv := httptest.NewServer(newRouter(st, cfg, ar, ch, reg))
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, store: st, arena: ar}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, respBody
}

func decodeInto(t *testing.T, raw []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var out struct {
		Error string `json:"error"`
	}
	decodeInto(t, raw, &out)
	return out.Error
}

func hexAddr(b byte) string {
	buf := make([]byte, 32)
	buf[31] = b
	const digits = "0123456789abcdef"
	out := make([]byte, 64)
	for i, c := range buf {
		out[2*i] = digits[c>>4]
		out[2*i+1] = digits[c&0x0f]
	}
	return string(out)
}
