package templates

import (
	"context"
	"strings"
	"time"

	"github.com/oksasatya/karaoke-social-api/config"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}
func WithResetURL(url string) Option { return func(d *EmailData) { d.ResetURL = url } }

func WithGeoFromIP(ctx context.Context, r GeoResolver, ip string) Option {
	return func(d *EmailData) {
		if r == nil || strings.TrimSpace(ip) == "" {
			return
		}
		if g, err := r.Lookup(ctx, ip); err == nil {
			if s := FormatGeo(g); s != "" {
				d.Location = s
			}
		}
	}
}

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		utc := time.Now().Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

// NewBaseEmailData fills the shared fields from cfg, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
		ResetURL:       cfg.ResetPasswordURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string, coins int64, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, Welcome, name, email, opts...)
	d.CoinsReceived = coins
	d.Level = 1
	return ToMap(d)
}

func NewForgotPasswordData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, ForgotPassword, name, email, opts...))
}

// GiftInfo is what a gift notification shows about the transfer.
type GiftInfo struct {
	SenderName    string
	GiftName      string
	GiftTier      string
	GiftValue     int64
	CoinsReceived int64
	PointsGained  int64
	Level         int
}

func NewGiftReceivedData(cfg *config.Config, name, email string, g GiftInfo, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, GiftReceived, name, email, opts...)
	d.SenderName = g.SenderName
	d.GiftName = g.GiftName
	d.GiftTier = g.GiftTier
	d.GiftValue = g.GiftValue
	d.CoinsReceived = g.CoinsReceived
	d.PointsGained = g.PointsGained
	d.Level = g.Level
	return ToMap(d)
}

func NewLevelUpData(cfg *config.Config, name, email string, previous, level int, totalPoints int64, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, LevelUp, name, email, opts...)
	d.PreviousLevel = previous
	d.Level = level
	d.TotalPoints = totalPoints
	return ToMap(d)
}
