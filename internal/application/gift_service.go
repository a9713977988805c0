package application

import (
	"context"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/ledger"
	repo "github.com/oksasatya/karaoke-social-api/internal/domain/repository"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
	"github.com/oksasatya/karaoke-social-api/pkg/metrics"
)

const (
	keyGiftCatalog  = "gifts:available"
	giftCatalogTTL  = 10 * time.Minute
	historyPageSize = 50
)

// GiftService runs the gift catalog and the coin economy.
type GiftService struct {
	Stores    Stores
	Economy   *ledger.EconomyLedger
	Points    *Points
	Notify    *Notifier
	Redis     *redis.Client
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewGiftService(stores Stores, points *Points, notify *Notifier, rdb *redis.Client, logger *logrus.Logger) *GiftService {
	return &GiftService{Stores: stores, Economy: ledger.NewEconomyLedger(), Points: points, Notify: notify, Redis: rdb, Logger: logger}
}

// GiftView is the catalog projection of a gift. It is also what the catalog
// cache stores.
type GiftView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IconURL     string          `json:"icon_url"`
	Value       int64           `json:"value"`
	Tier        entity.GiftTier `json:"tier"`
	BonusPoints int64           `json:"bonus_points"`
	Available   bool            `json:"available"`
}

func NewGiftView(g *entity.Gift) GiftView {
	return GiftView{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		IconURL:     g.IconURL,
		Value:       g.Value,
		Tier:        g.Tier,
		BonusPoints: g.BonusPoints,
		Available:   g.Available,
	}
}

// ListAvailable returns the transferable gifts ordered by value.
func (s *GiftService) ListAvailable(ctx context.Context) ([]GiftView, error) {
	if s.Redis != nil {
		var cached []GiftView
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, keyGiftCatalog, &cached); err == nil && ok {
			return cached, nil
		}
	}
	gifts, err := s.Stores.Gifts.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GiftView, 0, len(gifts))
	for _, g := range gifts {
		out = append(out, NewGiftView(g))
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, keyGiftCatalog, out, giftCatalogTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("gift catalog cache write failed")
		}
	}
	return out, nil
}

func (s *GiftService) invalidateCatalog(ctx context.Context) {
	if s.Redis != nil {
		_ = helpers.RedisDel(ctx, s.Redis, keyGiftCatalog)
	}
}

type CreateGiftInput struct {
	Name        string
	Description string
	IconURL     string
	Value       int64
	Tier        string
}

func (s *GiftService) Create(ctx context.Context, in CreateGiftInput) (*entity.Gift, error) {
	tier := entity.GiftTier(strings.ToLower(strings.TrimSpace(in.Tier)))
	if tier != "" && !tier.Valid() {
		return nil, ErrInvalidTier
	}
	if in.Value < 1 {
		return nil, ErrInvalidGiftValue
	}
	g := entity.NewGift(strings.TrimSpace(in.Name), in.Description, in.IconURL, in.Value, tier)
	if err := s.Stores.Gifts.Create(ctx, g); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return g, nil
}

// UpdateGiftInput carries the fields to change; nil means unchanged.
type UpdateGiftInput struct {
	Name        *string
	Description *string
	IconURL     *string
	Value       *int64
	Tier        *string
	Available   *bool
}

// Update edits a catalog entry. Changing the tier recomputes its bonus points.
func (s *GiftService) Update(ctx context.Context, id string, in UpdateGiftInput) (*entity.Gift, error) {
	var g *entity.Gift
	err := s.Stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		g, err = s.Stores.Gifts.GetByIDForUpdate(ctx, id)
		if err != nil {
			return orNotFound(err, ledger.ErrGiftNotFound)
		}
		if in.Tier != nil {
			tier := entity.GiftTier(strings.ToLower(strings.TrimSpace(*in.Tier)))
			if !tier.Valid() {
				return ErrInvalidTier
			}
			g.SetTier(tier)
		}
		if in.Value != nil {
			if *in.Value < 1 {
				return ErrInvalidGiftValue
			}
			g.Value = *in.Value
		}
		if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
			g.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			g.Description = *in.Description
		}
		if in.IconURL != nil {
			g.IconURL = *in.IconURL
		}
		if in.Available != nil {
			g.Available = *in.Available
		}
		return s.Stores.Gifts.Update(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return g, nil
}

// UploadIcon stores the icon in GCS and points the gift at it.
func (s *GiftService) UploadIcon(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.Gift, error) {
	if _, err := s.Stores.Gifts.GetByID(ctx, id); err != nil {
		return nil, orNotFound(err, ledger.ErrGiftNotFound)
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, ErrStorageNotReady
	}
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, helpers.ObjectPath("gifts", id, filename), contentType, r)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, id, UpdateGiftInput{IconURL: &url})
}

// Send transfers giftID from senderID to receiverID. The gift row is share
// locked so it cannot be withdrawn mid-send, both users are locked, and the
// balance writes, the transfer record and the award commit together, so a
// sender's balance can never be spent twice.
func (s *GiftService) Send(ctx context.Context, senderID, receiverID, giftID string) (*ledger.TransferReceipt, error) {
	var (
		receipt          *ledger.TransferReceipt
		sender, receiver *entity.User
		gift             *entity.Gift
		g                granted
	)
	err := s.Stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		gift, err = s.Stores.Gifts.GetByIDForShare(ctx, giftID)
		if err != nil {
			if !isNotFound(err) {
				return err
			}
			gift = nil
		}
		users, err := lockUsers(ctx, s.Stores.Users, senderID, receiverID)
		if err != nil {
			return err
		}
		sender, receiver = users[senderID], users[receiverID]
		if receipt, err = s.Economy.Transfer(sender, receiver, gift); err != nil {
			return err
		}
		if err := s.Stores.Users.Update(ctx, sender); err != nil {
			return err
		}
		if err := s.Stores.Users.Update(ctx, receiver); err != nil {
			return err
		}
		if err := s.Stores.Gifts.AppendTransfer(ctx, receipt.Record); err != nil {
			return err
		}
		g, err = s.Points.record(ctx, receiver, receipt.PreviousLevel, receipt.Award)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.GiftsSent.WithLabelValues(string(gift.Tier)).Inc()
	metrics.CoinsMoved.WithLabelValues("debited").Add(float64(receipt.GiftValue))
	metrics.CoinsMoved.WithLabelValues("credited").Add(float64(receipt.Payout))
	metrics.CoinsMoved.WithLabelValues("fee").Add(float64(receipt.Fee))
	s.Points.announce(ctx, g)
	s.Notify.GiftReceived(ctx, sender, receiver, gift, receipt)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"sender_id":    senderID,
			"receiver_id":  receiverID,
			"gift_id":      giftID,
			"tier":         gift.Tier,
			"value":        receipt.GiftValue,
			"payout":       receipt.Payout,
			"fee":          receipt.Fee,
			"points":       receipt.PointsGained,
			"sender_coins": receipt.SenderCoins,
		}).Info("gift sent")
	}
	return receipt, nil
}

// TransferView is one line of the sent/received history.
type TransferView struct {
	ID           string             `json:"id"`
	Gift         TransferGift       `json:"gift"`
	CounterParty entity.UserSummary `json:"counterparty"`
	CreatedAt    time.Time          `json:"created_at"`
}

type TransferGift struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	IconURL string          `json:"icon_url"`
	Value   int64           `json:"value"`
	Tier    entity.GiftTier `json:"tier"`
}

func (s *GiftService) Received(ctx context.Context, userID string) ([]TransferView, error) {
	entries, err := s.Stores.Gifts.Received(ctx, userID, historyPageSize)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, entries)
}

func (s *GiftService) Sent(ctx context.Context, userID string) ([]TransferView, error) {
	entries, err := s.Stores.Gifts.Sent(ctx, userID, historyPageSize)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, entries)
}

func (s *GiftService) views(ctx context.Context, entries []repo.TransferEntry) ([]TransferView, error) {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.CounterParty)
	}
	people, err := s.Stores.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]TransferView, 0, len(entries))
	for _, e := range entries {
		cp, ok := people[e.CounterParty]
		if !ok {
			cp = entity.UserSummary{ID: e.CounterParty}
		}
		out = append(out, TransferView{
			ID:           e.RecordID,
			Gift:         TransferGift{ID: e.GiftID, Name: e.GiftName, IconURL: e.GiftIconURL, Value: e.GiftValue, Tier: e.GiftTier},
			CounterParty: cp,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out, nil
}

// BuyCoins credits amount coins to the user. There is no payment settlement.
func (s *GiftService) BuyCoins(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount < 1 {
		return 0, ErrInvalidAmount
	}
	var balance int64
	err := s.Stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.Stores.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return orNotFound(err, ErrUserNotFound)
		}
		u.Coins += amount
		balance = u.Coins
		return s.Stores.Users.Update(ctx, u)
	})
	if err != nil {
		return 0, err
	}
	metrics.CoinsMoved.WithLabelValues("purchased").Add(float64(amount))
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "amount": amount, "coins": balance}).Info("coins purchased")
	}
	return balance, nil
}
