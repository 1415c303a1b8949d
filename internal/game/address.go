package game

import (
	"encoding/hex"
	"errors"
	"strings"
)

var ErrInvalidAddress = errors.New("invalid_address")

// Address identifies a player account: a 32-byte value, rendered as lowercase
// hex. On the wire it doubles as the first field element of the commit proof's
// public inputs.
type Address [32]byte

func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	var a Address
	if len(s) != hex.EncodedLen(len(a)) {
		return Address{}, ErrInvalidAddress
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, ErrInvalidAddress
	}
	copy(a[:], b)
	return a, nil
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
