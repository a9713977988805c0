package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

const userColumns = `id::text, email, password_hash, name, avatar_url, level, points, coins, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.AvatarURL,
		&u.Level, &u.Points, &u.Coins, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *UserRepository) loadRelations(ctx context.Context, q querier, u *entity.User) error {
	followers, err := collectIDs(ctx, q, `SELECT follower_id::text FROM follows WHERE followee_id = $1 ORDER BY created_at`, u.ID)
	if err != nil {
		return err
	}
	following, err := collectIDs(ctx, q, `SELECT followee_id::text FROM follows WHERE follower_id = $1 ORDER BY created_at`, u.ID)
	if err != nil {
		return err
	}
	favorites, err := collectIDs(ctx, q, `SELECT song_id::text FROM favorite_songs WHERE user_id = $1 ORDER BY created_at`, u.ID)
	if err != nil {
		return err
	}
	u.Followers, u.Following, u.FavoriteSongs = followers, following, favorites
	return nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, avatar_url, level, points, coins)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.AvatarURL, u.Level, u.Points, u.Coins)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *UserRepository) get(ctx context.Context, sql string, arg string) (*entity.User, error) {
	q := conn(ctx, r.pool)
	u, err := scanUser(q.QueryRow(ctx, sql, arg))
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, q, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users
		SET email = $1, name = $2, avatar_url = $3, level = $4, points = $5, coins = $6, updated_at = $7
		WHERE id = $8
	`, u.Email, u.Name, u.AvatarURL, u.Level, u.Points, u.Coins, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetFollow(ctx context.Context, followerID, followeeID string, follow bool) error {
	q := conn(ctx, r.pool)
	if follow {
		_, err := q.Exec(ctx, `
			INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)
			ON CONFLICT (follower_id, followee_id) DO NOTHING
		`, followerID, followeeID)
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	return err
}

func (r *UserRepository) SetFavorite(ctx context.Context, userID, songID string, favorite bool) error {
	q := conn(ctx, r.pool)
	if favorite {
		_, err := q.Exec(ctx, `
			INSERT INTO favorite_songs (user_id, song_id) VALUES ($1, $2)
			ON CONFLICT (user_id, song_id) DO NOTHING
		`, userID, songID)
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM favorite_songs WHERE user_id = $1 AND song_id = $2`, userID, songID)
	return err
}

func scanSummaries(rows pgx.Rows) ([]entity.UserSummary, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.UserSummary, error) {
		var s entity.UserSummary
		err := row.Scan(&s.ID, &s.Name, &s.AvatarURL, &s.Level, &s.Points)
		return s, err
	})
}

func (r *UserRepository) Summaries(ctx context.Context, ids []string) (map[string]entity.UserSummary, error) {
	out := map[string]entity.UserSummary{}
	ids = validIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id::text, name, avatar_url, level, points FROM users WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	list, err := scanSummaries(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		out[s.ID] = s
	}
	return out, nil
}

func (r *UserRepository) TopByPoints(ctx context.Context, limit int) ([]entity.UserSummary, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id::text, name, avatar_url, level, points FROM users ORDER BY points DESC, created_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

func (r *UserRepository) Recent(ctx context.Context, limit int) ([]entity.UserSummary, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id::text, name, avatar_url, level, points FROM users ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

func (r *UserRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if !validID(userID) {
		return false, nil
	}
	var ok bool
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur JOIN roles ro ON ro.id = ur.role_id
			WHERE ur.user_id = $1 AND ro.name = $2
		)
	`, userID, role).Scan(&ok)
	return ok, err
}

func (r *UserRepository) AssignRole(ctx context.Context, userID, role string) error {
	if !entity.KnownRole(role) {
		return entity.ErrUnknownRole
	}
	q := conn(ctx, r.pool)
	if _, err := q.Exec(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, role); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, role)
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
