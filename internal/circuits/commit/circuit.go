// Package commit holds the Groth16 commitment circuit for battle plans.
//
// The circuit proves knowledge of a secret plan and salt such that:
//
//	C = MiMC(DST, player, session, moves, salt)
//
// where player, session and C are public. Binding the player address and
// session id into the hash is what makes a commitment unusable across games
// or by another account.
package commit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// dstDecimal is SHA256("CLASH_COMMIT_V1") as a decimal big integer, reduced
// into the BN254 scalar field on use. Domain separation for the commit hash.
const dstDecimal = "93780905089266058810963562693331556980358205127478038542593042505525423477850"

func dst() *big.Int {
	v, _ := new(big.Int).SetString(dstDecimal, 10)
	return v
}

// Circuit is the commit-phase constraint system.
type Circuit struct {
	// Public inputs, in wire order: player address, session id, commitment.
	Player  frontend.Variable `gnark:",public"`
	Session frontend.Variable `gnark:",public"`
	C       frontend.Variable `gnark:",public"`

	// Secret witness: the packed 6-byte move sequence and a blinding salt.
	// Without the salt the 729 possible plans could be brute-forced from C.
	Moves frontend.Variable
	Salt  frontend.Variable
}

func (c *Circuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(dst())
	h.Write(c.Player)
	h.Write(c.Session)
	h.Write(c.Moves)
	h.Write(c.Salt)
	api.AssertIsEqual(h.Sum(), c.C)
	return nil
}
