package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
)

// Postgres backs the Store interface with database/sql over the pgx stdlib
// driver. Commitment slots and battle results are stored as jsonb; addresses
// as their hex string form.
type Postgres struct {
	DB *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{DB: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	session_id BIGINT PRIMARY KEY,
	player1 TEXT NOT NULL,
	player2 TEXT NOT NULL,
	player1_points BIGINT NOT NULL,
	player2_points BIGINT NOT NULL,
	player1_commitment JSONB,
	player2_commitment JSONB,
	battle_result JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS challenges (
	id TEXT PRIMARY KEY,
	challenger TEXT NOT NULL,
	challenged TEXT NOT NULL,
	points_wagered BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	is_accepted BOOLEAN NOT NULL DEFAULT FALSE,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	session_id BIGINT
);
CREATE INDEX IF NOT EXISTS idx_challenges_challenger ON challenges (challenger);
CREATE INDEX IF NOT EXISTS idx_challenges_challenged ON challenges (challenged);
CREATE TABLE IF NOT EXISTS usernames (
	address TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS accounts (
	address TEXT PRIMARY KEY,
	balance_points BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS ledger_entries (
	id TEXT PRIMARY KEY,
	address TEXT NOT NULL,
	type TEXT NOT NULL,
	amount_points BIGINT NOT NULL,
	ref_type TEXT NOT NULL,
	ref_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_address ON ledger_entries (address, created_at DESC);
`

func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, schema)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func marshalCommitment(has bool, c PlayerCommitment) (any, error) {
	if !has {
		return nil, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Postgres) CreateGame(ctx context.Context, g *Game) error {
	c1, err := marshalCommitment(g.HasPlayer1Commitment, g.Player1Commitment)
	if err != nil {
		return err
	}
	c2, err := marshalCommitment(g.HasPlayer2Commitment, g.Player2Commitment)
	if err != nil {
		return err
	}
	var res any
	if g.HasBattleResult {
		if res, err = json.Marshal(g.BattleResult); err != nil {
			return err
		}
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO games (session_id, player1, player2, player1_points, player2_points, player1_commitment, player2_commitment, battle_result, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		int64(g.SessionID), g.Player1.String(), g.Player2.String(),
		g.Player1Points, g.Player2Points, c1, c2, res, g.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *Postgres) GetGame(ctx context.Context, sessionID uint32) (*Game, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT session_id, player1, player2, player1_points, player2_points, player1_commitment, player2_commitment, battle_result, created_at
		FROM games WHERE session_id = $1`, int64(sessionID))
	return scanGame(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*Game, error) {
	var (
		g          Game
		sid        int64
		p1, p2     string
		c1, c2, br []byte
	)
	if err := row.Scan(&sid, &p1, &p2, &g.Player1Points, &g.Player2Points, &c1, &c2, &br, &g.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	g.SessionID = uint32(sid)
	var err error
	if g.Player1, err = game.ParseAddress(p1); err != nil {
		return nil, err
	}
	if g.Player2, err = game.ParseAddress(p2); err != nil {
		return nil, err
	}
	if len(c1) > 0 {
		if err := json.Unmarshal(c1, &g.Player1Commitment); err != nil {
			return nil, err
		}
		g.HasPlayer1Commitment = true
	}
	if len(c2) > 0 {
		if err := json.Unmarshal(c2, &g.Player2Commitment); err != nil {
			return nil, err
		}
		g.HasPlayer2Commitment = true
	}
	if len(br) > 0 {
		g.BattleResult = &game.BattleResult{}
		if err := json.Unmarshal(br, g.BattleResult); err != nil {
			return nil, err
		}
		g.HasBattleResult = true
	}
	return &g, nil
}

func (s *Postgres) UpdateGame(ctx context.Context, g *Game) error {
	c1, err := marshalCommitment(g.HasPlayer1Commitment, g.Player1Commitment)
	if err != nil {
		return err
	}
	c2, err := marshalCommitment(g.HasPlayer2Commitment, g.Player2Commitment)
	if err != nil {
		return err
	}
	var res any
	if g.HasBattleResult {
		if res, err = json.Marshal(g.BattleResult); err != nil {
			return err
		}
	}
	tag, err := s.DB.ExecContext(ctx, `
		UPDATE games SET player1_points = $1, player2_points = $2, player1_commitment = $3, player2_commitment = $4, battle_result = $5
		WHERE session_id = $6`,
		g.Player1Points, g.Player2Points, c1, c2, res, int64(g.SessionID))
	if err != nil {
		return err
	}
	if n, _ := tag.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) CreateChallenge(ctx context.Context, c *Challenge) error {
	var sid any
	if c.SessionID != nil {
		sid = int64(*c.SessionID)
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO challenges (id, challenger, challenged, points_wagered, created_at, expires_at, is_accepted, is_completed, session_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.Challenger.String(), c.Challenged.String(), c.PointsWagered,
		c.CreatedAt, c.ExpiresAt, c.IsAccepted, c.IsCompleted, sid)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func scanChallenge(row rowScanner) (*Challenge, error) {
	var (
		c      Challenge
		ch, cd string
		sid    sql.NullInt64
	)
	if err := row.Scan(&c.ID, &ch, &cd, &c.PointsWagered, &c.CreatedAt, &c.ExpiresAt, &c.IsAccepted, &c.IsCompleted, &sid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var err error
	if c.Challenger, err = game.ParseAddress(ch); err != nil {
		return nil, err
	}
	if c.Challenged, err = game.ParseAddress(cd); err != nil {
		return nil, err
	}
	if sid.Valid {
		v := uint32(sid.Int64)
		c.SessionID = &v
	}
	return &c, nil
}

func (s *Postgres) GetChallenge(ctx context.Context, id string) (*Challenge, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, challenger, challenged, points_wagered, created_at, expires_at, is_accepted, is_completed, session_id
		FROM challenges WHERE id = $1`, id)
	return scanChallenge(row)
}

func (s *Postgres) UpdateChallenge(ctx context.Context, c *Challenge) error {
	var sid any
	if c.SessionID != nil {
		sid = int64(*c.SessionID)
	}
	tag, err := s.DB.ExecContext(ctx, `
		UPDATE challenges SET is_accepted = $1, is_completed = $2, session_id = $3 WHERE id = $4`,
		c.IsAccepted, c.IsCompleted, sid, c.ID)
	if err != nil {
		return err
	}
	if n, _ := tag.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) ListChallengesByPlayer(ctx context.Context, player game.Address) ([]Challenge, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, challenger, challenged, points_wagered, created_at, expires_at, is_accepted, is_completed, session_id
		FROM challenges WHERE challenger = $1 OR challenged = $1 ORDER BY created_at ASC`, player.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Postgres) MarkChallengeCompleted(ctx context.Context, sessionID uint32) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE challenges SET is_completed = TRUE WHERE session_id = $1`, int64(sessionID))
	return err
}

func (s *Postgres) SetUsername(ctx context.Context, addr game.Address, name string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO usernames (address, username) VALUES ($1,$2)
		ON CONFLICT (address) DO UPDATE SET username = EXCLUDED.username, updated_at = now()`,
		addr.String(), name)
	return err
}

func (s *Postgres) GetUsername(ctx context.Context, addr game.Address) (string, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT username FROM usernames WHERE address = $1`, addr.String())
	var name string
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return name, nil
}

func (s *Postgres) EnsureAccount(ctx context.Context, addr game.Address, initial int64) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO accounts (address, balance_points) VALUES ($1,$2) ON CONFLICT (address) DO NOTHING`, addr.String(), initial)
	return err
}

func (s *Postgres) GetBalance(ctx context.Context, addr game.Address) (int64, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT balance_points FROM accounts WHERE address = $1`, addr.String())
	var bal int64
	if err := row.Scan(&bal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return bal, nil
}

func (s *Postgres) recordLedgerEntry(ctx context.Context, tx *sql.Tx, addr game.Address, entryType string, amount int64, refType, refID string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO ledger_entries (id, address, type, amount_points, ref_type, ref_id) VALUES ($1,$2,$3,$4,$5,$6)`,
		NewID(), addr.String(), entryType, amount, refType, refID)
	return err
}

func (s *Postgres) Credit(ctx context.Context, addr game.Address, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, ErrInsufficientFunds
	}
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var bal int64
	row := tx.QueryRowContext(ctx, `SELECT balance_points FROM accounts WHERE address = $1 FOR UPDATE`, addr.String())
	if err := row.Scan(&bal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	newBal := bal + amount
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance_points = $1, updated_at = now() WHERE address = $2`, newBal, addr.String()); err != nil {
		return 0, err
	}
	if err := s.recordLedgerEntry(ctx, tx, addr, entryType, amount, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newBal, nil
}

func (s *Postgres) Debit(ctx context.Context, addr game.Address, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, ErrInsufficientFunds
	}
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var bal int64
	row := tx.QueryRowContext(ctx, `SELECT balance_points FROM accounts WHERE address = $1 FOR UPDATE`, addr.String())
	if err := row.Scan(&bal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInsufficientFunds
		}
		return 0, err
	}
	if bal < amount {
		return 0, ErrInsufficientFunds
	}
	newBal := bal - amount
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance_points = $1, updated_at = now() WHERE address = $2`, newBal, addr.String()); err != nil {
		return 0, err
	}
	if err := s.recordLedgerEntry(ctx, tx, addr, entryType, -amount, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newBal, nil
}

func (s *Postgres) ListLedgerEntries(ctx context.Context, addr string, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows *sql.Rows
		err  error
	)
	if addr == "" {
		rows, err = s.DB.QueryContext(ctx, `SELECT id, address, type, amount_points, ref_type, ref_id, created_at FROM ledger_entries ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		rows, err = s.DB.QueryContext(ctx, `SELECT id, address, type, amount_points, ref_type, ref_id, created_at FROM ledger_entries WHERE address = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, addr, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LedgerEntry{}
	for rows.Next() {
		var (
			e LedgerEntry
			a string
		)
		if err := rows.Scan(&e.ID, &a, &e.Type, &e.Amount, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Address, err = game.ParseAddress(a); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.DB.PingContext(ctx)
}

func (s *Postgres) Close() error { return s.DB.Close() }
