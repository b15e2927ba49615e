package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"card_assistant/pkg"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveUtterance("greeting")
	m.ObserveUtterance("response")
	m.ObserveUtterance("response")
	m.ObserveUtterance("")
	m.ObserveIntent(pkg.ClassifiedIntent{IntentID: pkg.IntentCardManagement, Confidence: 0.92})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Utterances.WithLabelValues("greeting")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Utterances.WithLabelValues("response")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Utterances.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Intents.WithLabelValues(string(pkg.IntentCardManagement))))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Confidence))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveUtterance("fallback")

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(recorder.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `cardbot_utterances_total{branch="fallback"} 1`)
}
