package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAccumulate(t *testing.T) {
	before := testutil.ToFloat64(GiftsSent.WithLabelValues("rare"))
	GiftsSent.WithLabelValues("rare").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(GiftsSent.WithLabelValues("rare")))

	before = testutil.ToFloat64(CoinsMoved.WithLabelValues("fee"))
	CoinsMoved.WithLabelValues("fee").Add(30)
	assert.Equal(t, before+30, testutil.ToFloat64(CoinsMoved.WithLabelValues("fee")))
}
