package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Metrics provides basic in-memory counters for the HTTP surface and
// the workflow engine.
type Metrics struct {
	mu                   sync.Mutex
	requestCount         map[string]int64
	errorCount           map[string]int64
	transitionCount      map[string]int64
	rejectionCount       map[string]int64
	notificationFailures map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:         make(map[string]int64),
		errorCount:           make(map[string]int64),
		transitionCount:      make(map[string]int64),
		rejectionCount:       make(map[string]int64),
		notificationFailures: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordTransition counts a committed stage transition.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionCount[from+"->"+to]++
}

// RecordRejection counts a rejected transition attempt per target stage.
func (m *Metrics) RecordRejection(target string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectionCount[target]++
}

// RecordNotificationFailure counts a failed best-effort delivery.
func (m *Metrics) RecordNotificationFailure(channel string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationFailures[channel]++
}

// Snapshot returns copies of the counters for the health endpoint.
func (m *Metrics) Snapshot() (map[string]int64, map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	transitions := make(map[string]int64, len(m.transitionCount))
	for k, v := range m.transitionCount {
		transitions[k] = v
	}
	rejections := make(map[string]int64, len(m.rejectionCount))
	for k, v := range m.rejectionCount {
		rejections[k] = v
	}
	return transitions, rejections
}

// RequestLogger logs each request with latency and records counters.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		metrics.RecordRequest(c.Path(), c.Method(), status, duration)
		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration))
		return err
	}
}
