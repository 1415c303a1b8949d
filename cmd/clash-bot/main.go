// clash-bot drives one complete game against a running server: player1 sends a
// challenge, player2 accepts it, then the bot proves and commits a random
// battle plan for both players, reveals, resolves, and prints the playback.
// The server must either run with PROOF_MODE=insecure or load the verifying
// key this bot writes via BOT_VK_OUT, since Groth16 proofs only verify against
// the key pair from the same setup.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/circuits/commit"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/config"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/logging"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	p1, err := game.ParseAddress(cfg.Player1)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid BOT_PLAYER1")
	}
	p2, err := game.ParseAddress(cfg.Player2)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid BOT_PLAYER2")
	}

	log.Info().Msg("compiling circuit and running groth16 setup")
	keys, err := commit.Setup()
	if err != nil {
		log.Fatal().Err(err).Msg("setup failed")
	}
	if path := os.Getenv("BOT_VK_OUT"); path != "" {
		vk, err := keys.VerifyingKeyBytes()
		if err != nil {
			log.Fatal().Err(err).Msg("verifying key serialization failed")
		}
		if err := os.WriteFile(path, vk, 0o644); err != nil {
			log.Fatal().Err(err).Msg("verifying key write failed")
		}
		log.Info().Str("path", path).Msg("verifying key written")
	}

	bot := &bot{
		baseURL: cfg.ServerURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		keys:    keys,
	}

	var sent struct {
		ID string `json:"id"`
	}
	if err := bot.post("/api/challenges", map[string]any{
		"challenger": p1.String(),
		"challenged": p2.String(),
		"points":     cfg.Stake,
	}, &sent); err != nil {
		log.Fatal().Err(err).Msg("send challenge failed")
	}
	log.Info().Str("challenge_id", sent.ID).Msg("challenge sent")

	sessionID := bot.rnd.Uint32()
	if err := bot.post(fmt.Sprintf("/api/challenges/%s/accept", sent.ID), map[string]any{
		"player":     p2.String(),
		"session_id": sessionID,
	}, nil); err != nil {
		log.Fatal().Err(err).Msg("accept challenge failed")
	}
	log.Info().Uint32("session_id", sessionID).Msg("challenge accepted, game started")

	plans := map[game.Address]game.MoveSequence{
		p1: bot.randomPlan(),
		p2: bot.randomPlan(),
	}
	inputs := map[game.Address][]byte{}

	for _, player := range []game.Address{p1, p2} {
		salt, err := commit.NewSalt()
		if err != nil {
			log.Fatal().Err(err).Msg("salt generation failed")
		}
		raw := game.EncodeMovesRaw(plans[player])
		publicInputs, proofBytes, err := commit.Prove(bot.keys, player, sessionID, raw, salt)
		if err != nil {
			log.Fatal().Err(err).Msg("prove failed")
		}
		inputs[player] = publicInputs

		if err := bot.post(fmt.Sprintf("/api/games/%d/commit", sessionID), map[string]any{
			"player":        player.String(),
			"public_inputs": publicInputs,
			"proof":         proofBytes,
		}, nil); err != nil {
			log.Fatal().Err(err).Str("player", player.String()).Msg("commit failed")
		}
		log.Info().Str("player", player.String()).Msg("committed")
	}

	for _, player := range []game.Address{p1, p2} {
		seq := plans[player]
		if err := bot.post(fmt.Sprintf("/api/games/%d/reveal", sessionID), map[string]any{
			"player":        player.String(),
			"public_inputs": inputs[player],
			"moves":         seq[:],
		}, nil); err != nil {
			log.Fatal().Err(err).Str("player", player.String()).Msg("reveal failed")
		}
		log.Info().Str("player", player.String()).Msg("revealed")
	}

	var result game.BattleResult
	if err := bot.post(fmt.Sprintf("/api/games/%d/resolve", sessionID), nil, &result); err != nil {
		log.Fatal().Err(err).Msg("resolve failed")
	}
	ev := log.Info().Int("player1_hp", result.Player1HP).Int("player2_hp", result.Player2HP).
		Bool("is_draw", result.IsDraw)
	if result.Winner != nil {
		ev = ev.Str("winner", result.Winner.String())
	}
	ev.Msg("battle resolved")

	var playback json.RawMessage
	if err := bot.get(fmt.Sprintf("/api/games/%d/playback", sessionID), &playback); err != nil {
		log.Fatal().Err(err).Msg("playback failed")
	}
	fmt.Println(string(playback))
}

type bot struct {
	baseURL string
	client  *http.Client
	rnd     *rand.Rand
	keys    *commit.Keys
}

func (b *bot) randomPlan() game.MoveSequence {
	var seq game.MoveSequence
	for i := range seq {
		seq[i] = game.Move{
			Attack:  game.Attack(b.rnd.Intn(3)),
			Defense: game.Defense(b.rnd.Intn(3)),
		}
	}
	return seq
}

func (b *bot) post(path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(http.MethodPost, b.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return b.send(req, out)
}

func (b *bot) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return err
	}
	return b.send(req, out)
}

func (b *bot) send(req *http.Request, out any) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, raw)
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}
