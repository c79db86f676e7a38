package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danmuck/anp/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("anpd", "GET", "/health", 200, 12*time.Millisecond)
	RecordMessage(DirectionIn, "KANP", 36)
	RecordBytes(DirectionOut, 0)
	RecordSkippedTags(0)
	RecordPollWait(time.Millisecond)
}

func TestMessageAndPeerCounters(t *testing.T) {
	testlog.Start(t)
	before := testutil.ToFloat64(messages.WithLabelValues(DirectionOut, "OANP"))
	RecordMessage(DirectionOut, "OANP", 12)
	RecordMessage(DirectionOut, "OANP", 0)
	assert.Equal(t, before+2, testutil.ToFloat64(messages.WithLabelValues(DirectionOut, "OANP")))

	bytesBefore := testutil.ToFloat64(wireBytes.WithLabelValues(DirectionIn))
	RecordBytes(DirectionIn, 100)
	assert.Equal(t, bytesBefore+100, testutil.ToFloat64(wireBytes.WithLabelValues(DirectionIn)))

	active := testutil.ToFloat64(activePeers)
	RecordPeerAttached()
	assert.Equal(t, active+1, testutil.ToFloat64(activePeers))
	RecordPeerClosed("idle_timeout")
	assert.Equal(t, active, testutil.ToFloat64(activePeers))
}

func TestAccessLog(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AccessLog(log.Logger, "anpd-test"))
	r.GET("/peers/:id", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("anpd-test", "GET", "/peers/:id", "200"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/peers/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("anpd-test", "GET", "/peers/:id", "200")))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	missBefore := testutil.ToFloat64(httpRequests.WithLabelValues("anpd-test", "GET", "unmatched", "404"))
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, missBefore+1, testutil.ToFloat64(httpRequests.WithLabelValues("anpd-test", "GET", "unmatched", "404")))
}
