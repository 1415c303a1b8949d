package game

// TurnResult records one turn of simultaneous combat, for playback.
type TurnResult struct {
	Turn               int  `json:"turn"`
	Player1DamageDealt int  `json:"player1_damage_dealt"`
	Player2DamageDealt int  `json:"player2_damage_dealt"`
	Player1HP          int  `json:"player1_hp_remaining"`
	Player2HP          int  `json:"player2_hp_remaining"`
	Player1Defended    bool `json:"player1_defended"`
	Player2Defended    bool `json:"player2_defended"`
}

// BattleResult is the final outcome. Winner is nil on a draw.
type BattleResult struct {
	Player1HP   int          `json:"player1_hp"`
	Player2HP   int          `json:"player2_hp"`
	Winner      *Address     `json:"winner,omitempty"`
	IsDraw      bool         `json:"is_draw"`
	TurnResults []TurnResult `json:"turn_results"`
}

// Resolve runs the deterministic three-turn battle. Turns run strictly in
// order because combo bonuses depend on the two preceding turns. Within a
// turn both sides act simultaneously: each player's damage depends only on
// their own attack and the opponent's guard, and both HP totals are reduced
// from their pre-turn values. HP may go negative; totals are only compared
// after the final turn.
func Resolve(player1, player2 Address, p1Moves, p2Moves MoveSequence) BattleResult {
	p1HP := StartingHP
	p2HP := StartingHP
	turns := make([]TurnResult, 0, TurnsPerBattle)

	for turn := 0; turn < TurnsPerBattle; turn++ {
		p1Dmg, p2Defended := damageAt(p1Moves, turn, p2Moves[turn].Defense)
		p2Dmg, p1Defended := damageAt(p2Moves, turn, p1Moves[turn].Defense)

		p1HP -= p2Dmg
		p2HP -= p1Dmg

		turns = append(turns, TurnResult{
			Turn:               turn,
			Player1DamageDealt: p1Dmg,
			Player2DamageDealt: p2Dmg,
			Player1HP:          p1HP,
			Player2HP:          p2HP,
			Player1Defended:    p1Defended,
			Player2Defended:    p2Defended,
		})
	}

	result := BattleResult{
		Player1HP:   p1HP,
		Player2HP:   p2HP,
		TurnResults: turns,
	}
	switch {
	case p1HP > p2HP:
		w := player1
		result.Winner = &w
	case p2HP > p1HP:
		w := player2
		result.Winner = &w
	default:
		result.IsDraw = true
	}
	return result
}
