package game

// Combat numbers. Base damage per attack, flat bonus for repeating the same
// attack on consecutive turns. The 3-chain bonus replaces the 2-chain bonus,
// it does not stack on top of it.
const (
	StartingHP = 100

	SlashDamage     = 30
	FireballDamage  = 40
	LightningDamage = 35

	Combo2Bonus = 10
	Combo3Bonus = 25
)

func (a Attack) BaseDamage() int {
	switch a {
	case AttackSlash:
		return SlashDamage
	case AttackFireball:
		return FireballDamage
	case AttackLightning:
		return LightningDamage
	}
	return 0
}

// StoppedBy reports whether d fully nullifies a. The mapping is total and
// non-symmetric: Dodge stops Slash, Counter stops Fireball, Block stops
// Lightning. Every other pairing takes full damage.
func (a Attack) StoppedBy(d Defense) bool {
	switch a {
	case AttackSlash:
		return d == DefenseDodge
	case AttackFireball:
		return d == DefenseCounter
	case AttackLightning:
		return d == DefenseBlock
	}
	return false
}

// damageAt computes the attacker's damage on the given turn against the
// defender's guard for that turn, including combo bonuses from the attacker's
// own previous turns.
func damageAt(attacker MoveSequence, turn int, guard Defense) (dmg int, stopped bool) {
	atk := attacker[turn].Attack
	if atk.StoppedBy(guard) {
		return 0, true
	}
	dmg = atk.BaseDamage()
	switch {
	case turn >= 2 && attacker[turn-1].Attack == atk && attacker[turn-2].Attack == atk:
		dmg += Combo3Bonus
	case turn >= 1 && attacker[turn-1].Attack == atk:
		dmg += Combo2Bonus
	}
	return dmg, false
}
