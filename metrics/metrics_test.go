package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAttempt(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveAttempt("baidu-proxy", OutcomeDisabled, 120*time.Millisecond)
	c.ObserveAttempt("mymemory", OutcomeSuccess, 300*time.Millisecond)
	c.ObserveAttempt("mymemory", OutcomeSuccess, 200*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ProviderRequests.WithLabelValues("baidu-proxy", OutcomeDisabled)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.ProviderRequests.WithLabelValues("mymemory", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ProviderDisabled.WithLabelValues("baidu-proxy")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.ProviderDuration))
}

func TestObserveTranslation(t *testing.T) {
	c := New(prometheus.NewRegistry())
	c.ObserveTranslation(true)
	c.ObserveTranslation(false)
	c.ObserveTranslation(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Translations.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Translations.WithLabelValues("failure")))
}

func TestNilCollectorsAreNoops(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() {
		c.ObserveAttempt("google", OutcomeSuccess, time.Second)
		c.ObserveTranslation(true)
	})
}
