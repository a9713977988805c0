package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/karaoke-social-api/config"
)

func TestRenderUniversalPerType(t *testing.T) {
	cfg := &config.Config{AppName: "Karaoke", CompanyName: "Karaoke Inc"}
	cases := []struct {
		name string
		data map[string]any
		want []string
	}{
		{"welcome", NewWelcomeData(cfg, "Ana", "ana@example.com", 100), []string{"Welcome to Karaoke", "100 coins"}},
		{"forgot", NewForgotPasswordData(cfg, "Ana", "ana@example.com", WithResetURL("https://x/reset?token=t"), WithExpiresIn(30*time.Minute)), []string{"https://x/reset?token=t", "expires"}},
		{"gift", NewGiftReceivedData(cfg, "Bia", "bia@example.com", GiftInfo{SenderName: "Ana", GiftName: "Mic", GiftTier: "special", CoinsReceived: 70, PointsGained: 50, Level: 2}), []string{"Ana sent you a Mic", "Coins received: 70", "Bonus points: 50"}},
		{"level", NewLevelUpData(cfg, "Bia", "bia@example.com", 1, 2, 50), []string{"from level 1 to level 2", "50 points"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, html, err := Render(Universal, tc.data)
			require.NoError(t, err)
			for _, w := range tc.want {
				assert.Contains(t, text, w)
			}
			assert.Contains(t, html, "Karaoke Inc")
		})
	}
}

func TestNewBaseEmailDataAppliesOptions(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	d := NewBaseEmailData(&config.Config{ResetPasswordURL: "https://default"}, LevelUp, "Ana", "ana@example.com",
		WithIP("203.0.113.9"), WithUserAgent("curl"), WithTime(at))
	assert.Equal(t, LevelUp, d.Type)
	assert.Equal(t, "203.0.113.9", d.IP)
	assert.Equal(t, "curl", d.UserAgent)
	assert.Equal(t, at, d.TimeAt)
	assert.Equal(t, "https://default", d.ResetURL)
}
