package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

const giftColumns = `id::text, name, description, icon_url, value, tier, bonus_points, available, created_at`

type GiftRepository struct {
	pool *pgxpool.Pool
}

func NewGiftRepository(pool *pgxpool.Pool) *GiftRepository {
	return &GiftRepository{pool: pool}
}

func scanGift(row pgx.Row) (*entity.Gift, error) {
	g := &entity.Gift{}
	var tier string
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.IconURL, &g.Value, &tier,
		&g.BonusPoints, &g.Available, &g.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	g.Tier = entity.GiftTier(tier)
	return g, nil
}

func (r *GiftRepository) Create(ctx context.Context, g *entity.Gift) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO gifts (name, description, icon_url, value, tier, bonus_points, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at
	`, g.Name, g.Description, g.IconURL, g.Value, string(g.Tier), g.BonusPoints, g.Available,
	).Scan(&g.ID, &g.CreatedAt)
}

func (r *GiftRepository) GetByID(ctx context.Context, id string) (*entity.Gift, error) {
	g, err := r.row(ctx, id, "")
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id::text, gift_id::text, sender_id::text, receiver_id::text, created_at
		FROM gift_transfers WHERE gift_id = $1 ORDER BY created_at, id
	`, id)
	if err != nil {
		return nil, err
	}
	g.History, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.GiftTransferRecord, error) {
		var rec entity.GiftTransferRecord
		err := row.Scan(&rec.ID, &rec.GiftID, &rec.SenderID, &rec.ReceiverID, &rec.CreatedAt)
		return rec, err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GiftRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Gift, error) {
	return r.row(ctx, id, " FOR UPDATE")
}

func (r *GiftRepository) GetByIDForShare(ctx context.Context, id string) (*entity.Gift, error) {
	return r.row(ctx, id, " FOR SHARE")
}

func (r *GiftRepository) row(ctx context.Context, id, lock string) (*entity.Gift, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanGift(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+giftColumns+` FROM gifts WHERE id = $1`+lock, id))
}

func (r *GiftRepository) Update(ctx context.Context, g *entity.Gift) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE gifts
		SET name = $1, description = $2, icon_url = $3, value = $4, tier = $5, bonus_points = $6, available = $7
		WHERE id = $8
	`, g.Name, g.Description, g.IconURL, g.Value, string(g.Tier), g.BonusPoints, g.Available, g.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *GiftRepository) AppendTransfer(ctx context.Context, rec entity.GiftTransferRecord) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO gift_transfers (id, gift_id, sender_id, receiver_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.GiftID, rec.SenderID, rec.ReceiverID, rec.CreatedAt)
	return duplicate(err)
}

func (r *GiftRepository) ListAvailable(ctx context.Context) ([]*entity.Gift, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+giftColumns+` FROM gifts WHERE available ORDER BY value, name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Gift, error) {
		return scanGift(row)
	})
}

func (r *GiftRepository) Received(ctx context.Context, userID string, limit int) ([]repository.TransferEntry, error) {
	return r.history(ctx, `t.receiver_id`, `t.sender_id`, userID, limit)
}

func (r *GiftRepository) Sent(ctx context.Context, userID string, limit int) ([]repository.TransferEntry, error) {
	return r.history(ctx, `t.sender_id`, `t.receiver_id`, userID, limit)
}

func (r *GiftRepository) history(ctx context.Context, self, other, userID string, limit int) ([]repository.TransferEntry, error) {
	if !validID(userID) {
		return []repository.TransferEntry{}, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT t.id::text, g.id::text, g.name, g.icon_url, g.value, g.tier, `+other+`::text, t.created_at
		FROM gift_transfers t JOIN gifts g ON g.id = t.gift_id
		WHERE `+self+` = $1
		ORDER BY t.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.TransferEntry, error) {
		var e repository.TransferEntry
		var tier string
		err := row.Scan(&e.RecordID, &e.GiftID, &e.GiftName, &e.GiftIconURL, &e.GiftValue, &tier, &e.CounterParty, &e.CreatedAt)
		e.GiftTier = entity.GiftTier(tier)
		return e, err
	})
}

var _ repository.GiftRepository = (*GiftRepository)(nil)
