package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	mailtpl "github.com/oksasatya/karaoke-social-api/pkg/mailer/templates"
)

const displayLayout = "02 January 2006, 15:04 MST"

// LocalizeTimesIfPossible rewrites the display times in data into the
// timezone of the request IP, when one is known.
func LocalizeTimesIfPossible(ctx context.Context, resolver mailtpl.GeoResolver, data map[string]any) {
	ip := strings.TrimSpace(fmt.Sprintf("%v", data["IP"]))
	if ip == "" || ip == "<nil>" {
		return
	}
	g, err := resolver.Lookup(ctx, ip)
	if err != nil || strings.TrimSpace(g.Timezone) == "" {
		return
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return
	}
	if t, ok := parseTimeAny(data["ExpiresAt"]); ok {
		data["ExpiresAtText"] = t.In(loc).Format(displayLayout)
	}
	if t, ok := parseTimeAny(data["TimeAt"]); ok {
		data["Time"] = t.In(loc).Format(displayLayout)
	}
}

func parseTimeAny(v any) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	s := fmt.Sprintf("%v", v)
	for _, l := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05 -0700 MST"} {
		if t, err := time.Parse(l, s); err == nil && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}
