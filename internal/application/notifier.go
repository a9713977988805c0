package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/config"
	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/ledger"
	"github.com/oksasatya/karaoke-social-api/pkg/mailer"
	tpl "github.com/oksasatya/karaoke-social-api/pkg/mailer/templates"
)

// Publisher puts a job on the events queue. *helpers.RabbitPublisher
// satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier turns domain events into email jobs. A nil Notifier, a nil
// publisher or MAIL_SEND_ENABLED=false make every method a no-op.
type Notifier struct {
	Pub    Publisher
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewNotifier(pub Publisher, cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, Cfg: cfg, Logger: logger}
}

func (n *Notifier) enabled() bool {
	return n != nil && n.Pub != nil && n.Cfg != nil && n.Cfg.MailSendEnabled
}

func (n *Notifier) publish(ctx context.Context, to string, data map[string]any) {
	job := mailer.EmailJob{To: to, Template: tpl.Universal, Data: data}
	if err := n.Pub.PublishJSON(ctx, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"to": to, "type": data["Type"]}).Warn("publish email job failed")
	}
}

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	if !n.enabled() {
		return
	}
	n.publish(ctx, u.Email, tpl.NewWelcomeData(n.Cfg, u.Name, u.Email, u.Coins, tpl.WithTime(time.Now())))
}

func (n *Notifier) LevelUp(ctx context.Context, u *entity.User, previous int) {
	if !n.enabled() {
		return
	}
	n.publish(ctx, u.Email, tpl.NewLevelUpData(n.Cfg, u.Name, u.Email, previous, u.Level, u.Points, tpl.WithTime(time.Now())))
}

func (n *Notifier) GiftReceived(ctx context.Context, sender, receiver *entity.User, g *entity.Gift, r *ledger.TransferReceipt) {
	if !n.enabled() {
		return
	}
	info := tpl.GiftInfo{
		SenderName:    sender.Name,
		GiftName:      g.Name,
		GiftTier:      string(g.Tier),
		GiftValue:     r.GiftValue,
		CoinsReceived: r.Payout,
		PointsGained:  r.PointsGained,
		Level:         r.ReceiverLevel,
	}
	n.publish(ctx, receiver.Email, tpl.NewGiftReceivedData(n.Cfg, receiver.Name, receiver.Email, info, tpl.WithTime(r.Record.CreatedAt)))
}

func (n *Notifier) ForgotPassword(ctx context.Context, u *entity.User, opts ...tpl.Option) {
	if !n.enabled() {
		return
	}
	n.publish(ctx, u.Email, tpl.NewForgotPasswordData(n.Cfg, u.Name, u.Email, opts...))
}
