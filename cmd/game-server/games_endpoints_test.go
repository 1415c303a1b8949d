package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/proof"
)

func commitBody(player string, session uint32, d byte) map[string]any {
	addr, _ := game.ParseAddress(player)
	var digest proof.Digest
	digest[31] = d
	return map[string]any{
		"player":        player,
		"public_inputs": proof.BuildInputs(addr, session, digest),
		"proof":         []byte{0x01},
	}
}

func revealBody(player string, session uint32, d byte, moves []map[string]int) map[string]any {
	body := commitBody(player, session, d)
	delete(body, "proof")
	body["moves"] = moves
	return body
}

func slashBlockMoves() []map[string]int {
	out := make([]map[string]int, 3)
	for i := range out {
		out[i] = map[string]int{"attack": 0, "defense": 0}
	}
	return out
}

func TestGameFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	p1, p2 := hexAddr(1), hexAddr(2)

	resp, body := ts.do(t, http.MethodPost, "/api/games", map[string]any{
		"session_id": 42, "player1": p1, "player2": p2,
		"p1_points": 500, "p2_points": 500,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: status %d body %s", resp.StatusCode, body)
	}

	// Duplicate session conflicts.
	resp, body = ts.do(t, http.MethodPost, "/api/games", map[string]any{
		"session_id": 42, "player1": p1, "player2": p2,
	}, nil)
	if resp.StatusCode != http.StatusConflict || errorCode(t, body) != "session_in_use" {
		t.Fatalf("dup start: status %d body %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodPost, "/api/games/42/commit", commitBody(p1, 42, 0xaa), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("commit p1: status %d body %s", resp.StatusCode, body)
	}
	var commitResp struct {
		ProofID string `json:"proof_id"`
	}
	decodeInto(t, body, &commitResp)
	if commitResp.ProofID == "" {
		t.Fatalf("commit response %s", body)
	}

	// Reveal before opponent commit is a state conflict.
	resp, body = ts.do(t, http.MethodPost, "/api/games/42/reveal",
		revealBody(p1, 42, 0xaa, slashBlockMoves()), nil)
	if resp.StatusCode != http.StatusConflict || errorCode(t, body) != "both_players_not_committed" {
		t.Fatalf("early reveal: status %d body %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodPost, "/api/games/42/commit", commitBody(p2, 42, 0xbb), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("commit p2: status %d body %s", resp.StatusCode, body)
	}

	for i, req := range []map[string]any{
		revealBody(p1, 42, 0xaa, slashBlockMoves()),
		revealBody(p2, 42, 0xbb, slashBlockMoves()),
	} {
		resp, body = ts.do(t, http.MethodPost, "/api/games/42/reveal", req, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("reveal %d: status %d body %s", i, resp.StatusCode, body)
		}
	}

	resp, body = ts.do(t, http.MethodPost, "/api/games/42/resolve", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve: status %d body %s", resp.StatusCode, body)
	}
	var result struct {
		Player1HP int  `json:"player1_hp"`
		Player2HP int  `json:"player2_hp"`
		IsDraw    bool `json:"is_draw"`
	}
	decodeInto(t, body, &result)
	// Block does not stop slash, so both plans land identical combo damage
	// and the battle draws.
	if !result.IsDraw || result.Player1HP != result.Player2HP {
		t.Fatalf("result = %+v", result)
	}

	resp, body = ts.do(t, http.MethodPost, "/api/games/42/resolve", nil, nil)
	if resp.StatusCode != http.StatusConflict || errorCode(t, body) != "game_already_ended" {
		t.Fatalf("double resolve: status %d body %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/games/42/playback", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("playback: status %d body %s", resp.StatusCode, body)
	}
	var pb struct {
		Turns []struct {
			Turn int `json:"turn"`
		} `json:"turns"`
		IsDraw bool `json:"is_draw"`
	}
	decodeInto(t, body, &pb)
	if len(pb.Turns) != 3 || !pb.IsDraw {
		t.Fatalf("playback = %s", body)
	}

	// Draw refunds both stakes.
	resp, body = ts.do(t, http.MethodGet, "/api/players/"+p1+"/account", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("account: status %d body %s", resp.StatusCode, body)
	}
	var acct struct {
		Balance int64 `json:"balance"`
	}
	decodeInto(t, body, &acct)
	if acct.Balance != 100000 {
		t.Fatalf("balance after draw = %d", acct.Balance)
	}
}

func TestCommitErrorsOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	p1, p2 := hexAddr(1), hexAddr(2)

	resp, body := ts.do(t, http.MethodPost, "/api/games/9/commit", commitBody(p1, 9, 1), nil)
	if resp.StatusCode != http.StatusNotFound || errorCode(t, body) != "game_not_found" {
		t.Fatalf("missing game: status %d body %s", resp.StatusCode, body)
	}

	if resp, body = ts.do(t, http.MethodPost, "/api/games", map[string]any{
		"session_id": 9, "player1": p1, "player2": p2,
	}, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: status %d body %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodPost, "/api/games/9/commit", commitBody(hexAddr(3), 9, 1), nil)
	if resp.StatusCode != http.StatusForbidden || errorCode(t, body) != "not_player" {
		t.Fatalf("stranger: status %d body %s", resp.StatusCode, body)
	}

	// Inputs bound to another session fail the binding check.
	resp, body = ts.do(t, http.MethodPost, "/api/games/9/commit", commitBody(p1, 10, 1), nil)
	if resp.StatusCode != http.StatusUnprocessableEntity || errorCode(t, body) != "commitment_mismatch" {
		t.Fatalf("binding: status %d body %s", resp.StatusCode, body)
	}

	// Empty proof bytes are rejected as malformed.
	bad := commitBody(p1, 9, 1)
	bad["proof"] = []byte{}
	resp, body = ts.do(t, http.MethodPost, "/api/games/9/commit", bad, nil)
	if resp.StatusCode != http.StatusBadRequest || errorCode(t, body) != "invalid_proof" {
		t.Fatalf("empty proof: status %d body %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodPost, "/api/games/9/commit", commitBody(p1, 9, 1), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("commit: status %d body %s", resp.StatusCode, body)
	}
	resp, body = ts.do(t, http.MethodPost, "/api/games/9/commit", commitBody(p1, 9, 2), nil)
	if resp.StatusCode != http.StatusConflict || errorCode(t, body) != "already_committed" {
		t.Fatalf("double commit: status %d body %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/games/notanumber", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad session id: status %d body %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodGet, fmt.Sprintf("/api/games/%d", 12345), nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown game: status %d body %s", resp.StatusCode, body)
	}
}
