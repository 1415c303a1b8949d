// Package registry is the username directory: a plain key-value mapping from
// player address to display name.
package registry

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/game"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
)

var (
	ErrInvalidUsername  = errors.New("invalid_username")
	ErrUsernameNotFound = errors.New("username_not_found")
)

// MaxUsernameLen caps display names, counted in runes.
const MaxUsernameLen = 32

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) SetUsername(ctx context.Context, addr game.Address, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxUsernameLen {
		return ErrInvalidUsername
	}
	return s.store.SetUsername(ctx, addr, name)
}

func (s *Service) GetUsername(ctx context.Context, addr game.Address) (string, error) {
	name, err := s.store.GetUsername(ctx, addr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUsernameNotFound
		}
		return "", err
	}
	return name, nil
}
