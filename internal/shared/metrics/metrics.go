package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	checkStartedTotal   atomic.Uint64
	checkCompletedTotal atomic.Uint64
	checkFailedTotal    atomic.Uint64
	checkDeniedTotal    atomic.Uint64

	checkDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000})
)

// IncCheckStarted increments the started counter.
func IncCheckStarted() {
	checkStartedTotal.Add(1)
}

// IncCheckCompleted increments the completed counter.
func IncCheckCompleted() {
	checkCompletedTotal.Add(1)
}

// IncCheckFailed increments the failed counter.
func IncCheckFailed() {
	checkFailedTotal.Add(1)
}

// IncCheckDenied increments the quota-denied counter. Denials are expected
// outcomes and counted separately from failures.
func IncCheckDenied() {
	checkDeniedTotal.Add(1)
}

// ObserveCheckDurationMs records a check pipeline duration in milliseconds.
func ObserveCheckDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	checkDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_check_started_total", "Total resume checks started", checkStartedTotal.Load())
	writeCounter(&buf, "resume_check_completed_total", "Total resume checks completed", checkCompletedTotal.Load())
	writeCounter(&buf, "resume_check_failed_total", "Total resume checks failed", checkFailedTotal.Load())
	writeCounter(&buf, "resume_check_denied_total", "Total resume checks denied by quota", checkDeniedTotal.Load())
	writeHistogram(&buf, "resume_check_duration_ms", "Resume check duration in milliseconds", checkDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
