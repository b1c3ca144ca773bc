package ratefeed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `<?xml version="1.0" encoding="utf-8"?>
<observations realtime_start="2026-10-16" realtime_end="2026-10-16" observation_start="2026-09-01" units="lin" count="4">
  <observation realtime_start="2026-10-16" realtime_end="2026-10-16" date="2026-09-24" value="6.34"/>
  <observation realtime_start="2026-10-16" realtime_end="2026-10-16" date="2026-10-01" value="6.30"/>
  <observation realtime_start="2026-10-16" realtime_end="2026-10-16" date="2026-10-08" value="6.27"/>
  <observation realtime_start="2026-10-16" realtime_end="2026-10-16" date="2026-10-15" value="."/>
</observations>`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestLatestRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	rate, err := NewClient(srv.URL, quietLogger()).LatestRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.0627, rate.Rate, 1e-12)
	assert.Equal(t, time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC), rate.ObservedOn)
	assert.Equal(t, source, rate.Source)
}

func TestLatestRateErrors(t *testing.T) {
	t.Run("Bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()
		_, err := NewClient(srv.URL, quietLogger()).LatestRate(context.Background())
		assert.ErrorContains(t, err, "unexpected status code: 503")
	})

	t.Run("No usable observations", func(t *testing.T) {
		_, err := parseXMLResponse([]byte(`<observations><observation date="2026-10-15" value="."/></observations>`))
		assert.Error(t, err)
	})

	t.Run("Not XML", func(t *testing.T) {
		_, err := parseXMLResponse([]byte(`{"observations": []}`))
		assert.Error(t, err)
	})
}
