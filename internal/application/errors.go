package application

import (
	"errors"

	"github.com/oksasatya/karaoke-social-api/internal/domain/ledger"
	repo "github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = ledger.ErrUserNotFound
	ErrEmailTaken         = errors.New("email already registered")
	ErrStorageNotReady    = errors.New("object storage not configured")
	ErrResetUnavailable   = errors.New("password reset unavailable")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
	ErrInvalidAmount      = ledger.Validation("amount must be at least 1")
	ErrInvalidGenre       = ledger.Validation("unknown genre")
	ErrInvalidTier        = ledger.Validation("unknown gift tier")
	ErrInvalidGiftValue   = ledger.Validation("gift value must be at least 1")
	ErrInvalidDifficulty  = ledger.Validation("difficulty must be between 1 and 5")
	ErrInvalidDuration    = ledger.Validation("duration must be positive")
)

// orNotFound swaps a repository miss for the domain error callers map to 404.
func orNotFound(err, notFound error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFound
	}
	return err
}

func isNotFound(err error) bool { return errors.Is(err, repo.ErrNotFound) }
