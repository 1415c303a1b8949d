package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/proof"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/testutil"
)

func pgAddr(b byte) game.Address {
	var a game.Address
	a[31] = b
	return a
}

func TestPostgresGameRoundTrip(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	var d proof.Digest
	d[0] = 0xab
	g := &store.Game{
		SessionID:            3,
		Player1:              pgAddr(1),
		Player2:              pgAddr(2),
		Player1Points:        100,
		Player2Points:        200,
		HasPlayer1Commitment: true,
		Player1Commitment: store.PlayerCommitment{
			ProofID:     d,
			HasRevealed: true,
			Moves: game.MoveSequence{
				{Attack: game.AttackFireball, Defense: game.DefenseCounter},
				{Attack: game.AttackSlash, Defense: game.DefenseBlock},
				{Attack: game.AttackLightning, Defense: game.DefenseDodge},
			},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateGame(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.CreateGame(ctx, g); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("duplicate create: err = %v", err)
	}

	got, err := st.GetGame(ctx, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Player1 != g.Player1 || got.Player2Points != 200 {
		t.Fatalf("got %+v", got)
	}
	if !got.HasPlayer1Commitment || got.Player1Commitment.ProofID != d {
		t.Fatalf("commitment %+v", got.Player1Commitment)
	}
	if got.Player1Commitment.Moves != g.Player1Commitment.Moves {
		t.Fatalf("moves %+v", got.Player1Commitment.Moves)
	}
	if got.HasPlayer2Commitment || got.HasBattleResult {
		t.Fatalf("unexpected flags in %+v", got)
	}

	winner := g.Player1
	got.HasBattleResult = true
	got.BattleResult = &game.BattleResult{
		Player1HP: 40,
		Player2HP: -5,
		Winner:    &winner,
		TurnResults: []game.TurnResult{
			{Turn: 0, Player1DamageDealt: 35, Player2DamageDealt: 30, Player1HP: 70, Player2HP: 65},
		},
	}
	if err := st.UpdateGame(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	final, err := st.GetGame(ctx, 3)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if !final.HasBattleResult || final.BattleResult.Winner == nil || *final.BattleResult.Winner != winner {
		t.Fatalf("battle result %+v", final.BattleResult)
	}
	if len(final.BattleResult.TurnResults) != 1 {
		t.Fatalf("turn results %+v", final.BattleResult.TurnResults)
	}
}

func TestPostgresAccountsAndLedger(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()
	p := pgAddr(7)

	if err := st.EnsureAccount(ctx, p, 1000); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := st.EnsureAccount(ctx, p, 5); err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if bal, _ := st.GetBalance(ctx, p); bal != 1000 {
		t.Fatalf("balance = %d", bal)
	}

	if _, err := st.Debit(ctx, p, 1500, "stake_lock", "game", "1"); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("overdraw: err = %v", err)
	}
	bal, err := st.Debit(ctx, p, 400, "stake_lock", "game", "1")
	if err != nil || bal != 600 {
		t.Fatalf("debit: bal = %d, err = %v", bal, err)
	}
	bal, err = st.Credit(ctx, p, 800, "reward_credit", "game", "1")
	if err != nil || bal != 1400 {
		t.Fatalf("credit: bal = %d, err = %v", bal, err)
	}

	entries, err := st.ListLedgerEntries(ctx, p.String(), 10, 0)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ledger entries = %d", len(entries))
	}
	// Newest first.
	if entries[0].Type != "reward_credit" || entries[0].Amount != 800 {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
	if entries[1].Type != "stake_lock" || entries[1].Amount != -400 {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
}

func TestPostgresChallengesAndUsernames(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	c := &store.Challenge{
		ID:            store.NewID(),
		Challenger:    pgAddr(1),
		Challenged:    pgAddr(2),
		PointsWagered: 50,
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Hour),
	}
	if err := st.CreateChallenge(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	sid := uint32(9)
	c.IsAccepted = true
	c.SessionID = &sid
	if err := st.UpdateChallenge(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := st.MarkChallengeCompleted(ctx, sid); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	list, err := st.ListChallengesByPlayer(ctx, pgAddr(2))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].IsCompleted || list[0].SessionID == nil || *list[0].SessionID != sid {
		t.Fatalf("list = %+v", list)
	}

	if err := st.SetUsername(ctx, pgAddr(1), "anne bonny"); err != nil {
		t.Fatalf("set username: %v", err)
	}
	if err := st.SetUsername(ctx, pgAddr(1), "mary read"); err != nil {
		t.Fatalf("overwrite username: %v", err)
	}
	if name, _ := st.GetUsername(ctx, pgAddr(1)); name != "mary read" {
		t.Fatalf("username = %q", name)
	}
}
