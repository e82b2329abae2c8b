package app

import (
	"errors"
	"expvar"
	"fmt"

	"github.com/zserge/metric"
)

var ErrPublished = errors.New("metric already published")

// Metrics are the loop's timing series, in milliseconds and frames/s.
type Metrics struct {
	DrawMS  metric.Metric
	FrameMS metric.Metric
	FPS     metric.Metric
	Frames  metric.Metric
}

func NewMetrics() *Metrics {
	return &Metrics{
		DrawMS:  metric.NewGauge("5m5s"),
		FrameMS: metric.NewGauge("5m5s"),
		FPS:     metric.NewGauge("15m5s"),
		Frames:  metric.NewCounter("5m5s"),
	}
}

func (m *Metrics) named(prefix string) map[string]metric.Metric {
	return map[string]metric.Metric{
		prefix + "DrawMs":  m.DrawMS,
		prefix + "FrameMs": m.FrameMS,
		prefix + "FPS":     m.FPS,
		prefix + "Frames":  m.Frames,
	}
}

// Publish exposes the series through expvar, where metric.Exposed finds
// them. expvar names are process-wide; a name may only be published once.
func (m *Metrics) Publish(prefix string) error {
	vars := m.named(prefix)
	for n := range vars {
		if expvar.Get(n) != nil {
			return fmt.Errorf("%w: %s", ErrPublished, n)
		}
	}
	for n, v := range vars {
		expvar.Publish(n, v)
	}
	return nil
}
