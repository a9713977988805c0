package ledger

import (
	"github.com/google/uuid"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/scoring"
)

// TransferStage is how far a gift transfer progressed. Stages only move
// forward; a failed validation stays at StagePending.
type TransferStage int

const (
	StagePending TransferStage = iota
	StageValidated
	StageDebited
	StageCredited
	StageRecorded
)

func (s TransferStage) String() string {
	switch s {
	case StageValidated:
		return "validated"
	case StageDebited:
		return "debited"
	case StageCredited:
		return "credited"
	case StageRecorded:
		return "recorded"
	default:
		return "pending"
	}
}

// TransferReceipt summarises a completed gift transfer.
type TransferReceipt struct {
	Stage         TransferStage
	Record        entity.GiftTransferRecord
	Award         entity.PointAward
	GiftValue     int64
	Payout        int64
	Fee           int64
	SenderCoins   int64
	ReceiverCoins int64
	ReceiverLevel int
	PreviousLevel int
	PointsGained  int64
}

// LeveledUp reports whether the receiver gained at least one level.
func (r *TransferReceipt) LeveledUp() bool { return r.ReceiverLevel > r.PreviousLevel }

// EconomyLedger moves coins and bonus points when a gift is sent.
type EconomyLedger struct {
	Now   Clock
	NewID IDFunc
}

func NewEconomyLedger() *EconomyLedger {
	return &EconomyLedger{Now: defaultClock, NewID: uuid.NewString}
}

// Validate checks every transfer precondition without mutating anything.
func (l *EconomyLedger) Validate(sender, receiver *entity.User, gift *entity.Gift) error {
	switch {
	case gift == nil:
		return ErrGiftNotFound
	case !gift.Available:
		return ErrGiftUnavailable
	case receiver == nil:
		return ErrReceiverNotFound
	case sender == nil:
		return ErrUserNotFound
	case sender.Coins < gift.Value:
		return ErrInsufficientBalance
	}
	return nil
}

// Transfer runs Validated -> Debited -> Credited -> Recorded on the three
// aggregates. On a validation error nothing is touched.
func (l *EconomyLedger) Transfer(sender, receiver *entity.User, gift *entity.Gift) (*TransferReceipt, error) {
	if err := l.Validate(sender, receiver, gift); err != nil {
		return nil, err
	}
	r := &TransferReceipt{Stage: StageValidated, GiftValue: gift.Value}

	sender.Coins -= gift.Value
	r.Stage = StageDebited

	r.Payout = scoring.Payout(gift.Value)
	r.Fee = gift.Value - r.Payout
	receiver.Coins += r.Payout
	r.PointsGained = gift.BonusPoints
	r.PreviousLevel = receiver.AddPoints(gift.BonusPoints)
	r.ReceiverLevel = receiver.Level
	// Read both balances after the credit: sender and receiver may be the
	// same user.
	r.SenderCoins = sender.Coins
	r.ReceiverCoins = receiver.Coins
	r.Stage = StageCredited

	now := l.Now()
	r.Record = entity.GiftTransferRecord{
		ID:         l.NewID(),
		GiftID:     gift.ID,
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		CreatedAt:  now,
	}
	gift.History = append(gift.History, r.Record)
	r.Award = entity.PointAward{
		ID:        l.NewID(),
		UserID:    receiver.ID,
		ActorID:   sender.ID,
		Reason:    entity.AwardGiftReceived,
		Points:    gift.BonusPoints,
		SourceID:  r.Record.ID,
		CreatedAt: now,
	}
	r.Stage = StageRecorded
	return r, nil
}
