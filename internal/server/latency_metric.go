// Copyright (c) 2015 Western Digital Corporation or its affiliates.  All rights reserved.
// SPDX-License-Identifier: MIT

package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/westerndigitalcorporation/floe/internal/core"
)

// OpMetric tracks counts and latencies of "operations": a chunk of work such
// as scanning one root folder or parsing one preset.
//
// OpMetric registers three metric sets:
//   - A CounterVec with the given name, label "result", and any additional
//     labels. Start increments it with "result"="all"; Failed and
//     EndWithError add "result"="failed" or the error kind.
//   - A SummaryVec with the given name + "_latency". End adds the latency
//     only if no result was recorded before it.
//   - A GaugeVec with the given name + "_pending" counting operations between
//     Start and End.
//
// Metrics are registered globally, so an OpMetric is created once per
// process, typically as a package variable:
//
//	var scanOps = server.NewOpMetric("floe_preset_server_ops", "op")
//
//	func scan() (err error) {
//		op := scanOps.Start("scan_root")
//		defer func() { op.EndWithError(err) }()
//		...
//	}
type OpMetric struct {
	name      string
	counters  *prometheus.CounterVec
	latencies *prometheus.SummaryVec
	pending   *prometheus.GaugeVec
}

// NewOpMetric returns a new op metric.
func NewOpMetric(name string, labels ...string) *OpMetric {
	labelsWithResult := append([]string{"result"}, labels...)
	return &OpMetric{
		name:      name,
		counters:  promauto.NewCounterVec(prometheus.CounterOpts{Name: name}, labelsWithResult),
		latencies: promauto.NewSummaryVec(prometheus.SummaryOpts{Name: name + "_latency"}, labels),
		pending:   promauto.NewGaugeVec(prometheus.GaugeOpts{Name: name + "_pending"}, labels),
	}
}

// Start marks that a new operation has started and begins measuring the latency.
func (m *OpMetric) Start(values ...string) *LatencyMeasurer {
	lm := &LatencyMeasurer{opm: m, values: values}
	lm.Result("all") // this resets start, so set it below
	lm.start = time.Now().UnixNano()
	lm.opm.pending.WithLabelValues(values...).Inc()
	return lm
}

// Count returns how many operations ended with result.
func (m *OpMetric) Count(result string, values ...string) uint64 {
	valuesWithAll := append([]string{result}, values...)
	var value dto.Metric
	if m.counters.WithLabelValues(valuesWithAll...).Write(&value) != nil {
		return 0
	}
	return uint64(value.Counter.GetValue())
}

// Pending returns how many operations have started but not ended.
func (m *OpMetric) Pending(values ...string) int64 {
	var value dto.Metric
	if m.pending.WithLabelValues(values...).Write(&value) != nil {
		return 0
	}
	return int64(value.Gauge.GetValue())
}

// String returns a nice string with latency information.
func (m *OpMetric) String(values ...string) string {
	out := SummaryString(m.latencies.WithLabelValues(values...))
	out += fmt.Sprintf(" / %d failed / %d pending", m.Count("failed", values...), m.Pending(values...))
	return out
}

// Strings returns a map with results from String. Note that it only calls
// String with a single argument at a time, so it can only be used when the
// OpMetric has one label. But that is the common case.
func (m *OpMetric) Strings(keys ...string) map[string]string {
	out := make(map[string]string)
	for _, key := range keys {
		out[key] = m.String(key)
	}
	return out
}

// LatencyMeasurer times one operation.
type LatencyMeasurer struct {
	start  int64
	opm    *OpMetric
	values []string
}

// Failed records that the operation failed.
func (lm *LatencyMeasurer) Failed() {
	lm.Result("failed")
}

// Result records an arbitrary result.
func (lm *LatencyMeasurer) Result(result string) {
	lm.start = 0 // zero this so that End won't try to record latency
	valuesWithResult := append([]string{result}, lm.values...)
	lm.opm.counters.WithLabelValues(valuesWithResult...).Inc()
}

// End records the elapsed time since the LatencyMeasurer was created.
func (lm *LatencyMeasurer) End() {
	if lm.start != 0 {
		d := time.Duration(time.Now().UnixNano() - lm.start)
		lm.opm.latencies.WithLabelValues(lm.values...).Observe(float64(d) / 1e9)
	}
	lm.opm.pending.WithLabelValues(lm.values...).Dec()
}

// EndWithError records a failure, and the kind of err as a result of its
// own, if err is not nil. It always calls End.
func (lm *LatencyMeasurer) EndWithError(err error) {
	if err != nil {
		lm.Failed()
		lm.Result(ResultLabel(core.FromError(err)))
	}
	lm.End()
}

// ResultLabel turns an error kind into a metric label value.
func ResultLabel(e core.Error) string {
	return strings.ReplaceAll(strings.ToLower(e.String()), " ", "_")
}

// SummaryString formats the count and quantiles of a summary.
func SummaryString(obs prometheus.Observer) string {
	sum, ok := obs.(prometheus.Summary)
	if !ok {
		return ""
	}
	var value dto.Metric
	if sum.Write(&value) != nil || value.Summary == nil {
		return ""
	}
	out := fmt.Sprintf("Total count=%d;", value.Summary.GetSampleCount())
	for _, q := range value.Summary.Quantile {
		out += fmt.Sprintf(" %gth=%.3f;", q.GetQuantile()*100, q.GetValue())
	}
	return out[:len(out)-1]
}

// GaugeValue reads the current value of a gauge.
func GaugeValue(g prometheus.Gauge) float64 {
	var value dto.Metric
	if g.Write(&value) != nil {
		return 0
	}
	return value.Gauge.GetValue()
}
