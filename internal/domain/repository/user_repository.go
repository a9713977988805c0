package repository

import (
	"context"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByIDForUpdate loads the user and locks it for the surrounding
	// transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update persists profile fields, points, level and coins.
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	// SetFollow stores or removes the follower -> followee edge.
	SetFollow(ctx context.Context, followerID, followeeID string, follow bool) error
	SetFavorite(ctx context.Context, userID, songID string, favorite bool) error
	Summaries(ctx context.Context, ids []string) (map[string]entity.UserSummary, error)
	TopByPoints(ctx context.Context, limit int) ([]entity.UserSummary, error)
	Recent(ctx context.Context, limit int) ([]entity.UserSummary, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	AssignRole(ctx context.Context, userID, role string) error
}
