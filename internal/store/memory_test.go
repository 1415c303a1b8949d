package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
)

func addr(b byte) game.Address {
	var a game.Address
	a[31] = b
	return a
}

func TestMemoryGameLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	g := &Game{
		SessionID: 7,
		Player1:   addr(1),
		Player2:   addr(2),
		CreatedAt: time.Now().UTC(),
	}
	if err := m.CreateGame(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.CreateGame(ctx, g); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate create: err = %v, want ErrAlreadyExists", err)
	}

	got, err := m.GetGame(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Player1 != addr(1) || got.Player2 != addr(2) {
		t.Fatalf("players = %s, %s", got.Player1, got.Player2)
	}

	// Mutating the returned record must not touch the stored copy.
	got.HasPlayer1Commitment = true
	again, _ := m.GetGame(ctx, 7)
	if again.HasPlayer1Commitment {
		t.Fatal("stored record aliased by caller mutation")
	}

	got.HasBattleResult = true
	got.BattleResult = &game.BattleResult{Player1HP: 10, Player2HP: -5, Winner: &got.Player1}
	if err := m.UpdateGame(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	final, _ := m.GetGame(ctx, 7)
	if !final.HasBattleResult || final.BattleResult.Winner == nil || *final.BattleResult.Winner != addr(1) {
		t.Fatalf("battle result not persisted: %+v", final.BattleResult)
	}

	if _, err := m.GetGame(ctx, 8); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing game: err = %v", err)
	}
	if err := m.UpdateGame(ctx, &Game{SessionID: 8}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: err = %v", err)
	}
}

func TestMemoryChallenges(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now().UTC()

	c := &Challenge{
		ID:         NewID(),
		Challenger: addr(1),
		Challenged: addr(2),
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	}
	if err := m.CreateChallenge(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	sid := uint32(99)
	c.IsAccepted = true
	c.SessionID = &sid
	if err := m.UpdateChallenge(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}

	for _, p := range []game.Address{addr(1), addr(2)} {
		list, err := m.ListChallengesByPlayer(ctx, p)
		if err != nil {
			t.Fatalf("list %s: %v", p, err)
		}
		if len(list) != 1 || !list[0].IsAccepted {
			t.Fatalf("list %s = %+v", p, list)
		}
	}
	list, _ := m.ListChallengesByPlayer(ctx, addr(3))
	if len(list) != 0 {
		t.Fatalf("uninvolved player sees %d challenges", len(list))
	}

	if err := m.MarkChallengeCompleted(ctx, sid); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	got, _ := m.GetChallenge(ctx, c.ID)
	if !got.IsCompleted {
		t.Fatal("challenge not marked completed")
	}
}

func TestMemoryAccounts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p := addr(5)

	if _, err := m.GetBalance(ctx, p); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing account: err = %v", err)
	}
	if err := m.EnsureAccount(ctx, p, 1000); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// A second ensure must not reset the balance.
	if err := m.EnsureAccount(ctx, p, 9999); err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if bal, _ := m.GetBalance(ctx, p); bal != 1000 {
		t.Fatalf("balance = %d, want 1000", bal)
	}

	bal, err := m.Debit(ctx, p, 300, "stake_lock", "game", "7")
	if err != nil || bal != 700 {
		t.Fatalf("debit: bal = %d, err = %v", bal, err)
	}
	if _, err := m.Debit(ctx, p, 701, "stake_lock", "game", "7"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("overdraw: err = %v", err)
	}
	if bal, _ := m.GetBalance(ctx, p); bal != 700 {
		t.Fatalf("failed debit moved balance to %d", bal)
	}
	bal, err = m.Credit(ctx, p, 600, "reward_credit", "game", "7")
	if err != nil || bal != 1300 {
		t.Fatalf("credit: bal = %d, err = %v", bal, err)
	}

	entries, err := m.ListLedgerEntries(ctx, p.String(), 10, 0)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ledger has %d entries, want 2", len(entries))
	}
	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	if sum != 300 {
		t.Fatalf("ledger net = %d, want 300", sum)
	}
}

func TestMemoryUsernames(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p := addr(9)

	if _, err := m.GetUsername(ctx, p); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing username: err = %v", err)
	}
	if err := m.SetUsername(ctx, p, "blackbeard"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.SetUsername(ctx, p, "redbeard"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if name, _ := m.GetUsername(ctx, p); name != "redbeard" {
		t.Fatalf("username = %q", name)
	}
}
