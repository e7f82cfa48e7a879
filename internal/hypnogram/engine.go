// Package hypnogram derives clinical sleep metrics from a classified
// stage sequence: onset/offset timestamps, latencies, efficiency,
// time-in-stage, awakening and stage-shift counts. The derivation is pure
// computation over an immutable snapshot; it performs no I/O and every
// metric is computed eagerly at construction.
package hypnogram

import (
	"fmt"
	"strings"

	"github.com/hypnolab/sleep-analysis/internal/domain"
)

// DefaultEpochDuration is the clinical scoring convention of 30 seconds
// per epoch.
const DefaultEpochDuration int64 = 30

// Config carries the deployment-fixed parameters of the engine. Epoch
// duration and the stage set are passed explicitly so tests can run with
// non-default values.
type Config struct {
	// EpochDuration is the length of one scored epoch in seconds. Must be
	// positive.
	EpochDuration int64
	// Stages is the closed set of known stage categories. Every label in a
	// submitted sequence must belong to it, and the report carries one
	// <STAGE>Time entry per element.
	Stages []domain.StageLabel
}

// DefaultConfig returns the standard 30-second epoch, W/N1/N2/N3/REM
// configuration.
func DefaultConfig() Config {
	return Config{
		EpochDuration: DefaultEpochDuration,
		Stages:        domain.KnownStages(),
	}
}

// Engine computes the metric report for one recording. Construct it with
// New; after construction it is immutable and safe for concurrent reads.
type Engine struct {
	stages  []domain.StageLabel
	bedtime int64
	cfg     Config

	hasSlept         bool
	isLastEpochSleep bool
	sleepIndexes     []int

	sleepLatency *int64
	remLatency   *int64
	stageShifts  int64
	awakenings   int64

	report domain.MetricsReport
}

// New builds an engine for the given stage sequence and bedtime reference
// (unix seconds) and computes the full report. It fails with
// domain.ErrInvalidInput on an empty sequence, a label outside the
// configured stage set, or a non-positive epoch duration; it never
// produces a partial report.
func New(stages []domain.StageLabel, bedtime int64, cfg Config) (*Engine, error) {
	if cfg.EpochDuration <= 0 {
		return nil, fmt.Errorf("%w: epoch duration must be positive, got %d", domain.ErrInvalidInput, cfg.EpochDuration)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: stage sequence is empty", domain.ErrInvalidInput)
	}

	known := make(map[domain.StageLabel]struct{}, len(cfg.Stages))
	for _, s := range cfg.Stages {
		known[s] = struct{}{}
	}
	for i, s := range stages {
		if _, ok := known[s]; !ok {
			return nil, fmt.Errorf("%w: unknown stage label %q at epoch %d", domain.ErrInvalidInput, s, i)
		}
	}

	e := &Engine{
		stages:  append([]domain.StageLabel(nil), stages...),
		bedtime: bedtime,
		cfg:     cfg,
	}

	e.classify()
	e.computeLatencies()
	e.countTransitions()
	e.report = e.assemble()

	return e, nil
}

// Report returns the derived metric mapping. Integer metrics are int64,
// sleepEfficiency is float64, and metrics that are undefined because the
// subject never slept are nil. Callers must treat the mapping as
// read-only.
func (e *Engine) Report() domain.MetricsReport {
	return e.report
}

// HasSlept reports whether the sequence contains at least one non-wake
// epoch.
func (e *Engine) HasSlept() bool {
	return e.hasSlept
}

// classify reduces the sequence to the sleep-index set and the derived
// flags every downstream formula depends on.
func (e *Engine) classify() {
	for i, s := range e.stages {
		if !s.IsWake() {
			e.sleepIndexes = append(e.sleepIndexes, i)
		}
	}
	e.hasSlept = len(e.sleepIndexes) > 0
	e.isLastEpochSleep = !e.stages[len(e.stages)-1].IsWake()
}

// latencyOf returns the elapsed seconds to the first epoch matching the
// predicate, or nil if no epoch matches.
func (e *Engine) latencyOf(match func(domain.StageLabel) bool) *int64 {
	for i, s := range e.stages {
		if match(s) {
			elapsed := int64(i) * e.cfg.EpochDuration
			return &elapsed
		}
	}
	return nil
}

// computeLatencies derives sleep latency and REM latency. The reported
// REM latency is the time from sleep onset to the first REM epoch, i.e.
// elapsed-to-first-REM minus sleep latency, not an absolute quantity.
func (e *Engine) computeLatencies() {
	e.sleepLatency = e.latencyOf(func(s domain.StageLabel) bool { return !s.IsWake() })

	if !e.hasSlept {
		return
	}
	bedtimeToREM := e.latencyOf(func(s domain.StageLabel) bool { return s == domain.StageREM })
	if bedtimeToREM == nil {
		return
	}
	latency := *bedtimeToREM - *e.sleepLatency
	e.remLatency = &latency
}

// countTransitions scans adjacent epoch pairs for stage shifts and
// awakenings. A recording that ends while the subject is still asleep
// gets one extra shift and one extra awakening for the implicit return
// to wake at the end of the observation window.
func (e *Engine) countTransitions() {
	for i := 0; i+1 < len(e.stages); i++ {
		prev, next := e.stages[i], e.stages[i+1]
		if prev == next {
			continue
		}
		e.stageShifts++
		if !prev.IsWake() && next.IsWake() {
			e.awakenings++
		}
	}

	if e.hasSlept && e.isLastEpochSleep {
		e.stageShifts++
		e.awakenings++
	}
}

func (e *Engine) assemble() domain.MetricsReport {
	n := int64(len(e.stages))
	k := int64(len(e.sleepIndexes))
	dur := e.cfg.EpochDuration

	var sleepOffset, sleepOnset *int64
	if e.hasSlept {
		// Fallback to the full sequence length when no sleep index exists.
		// Unreachable while hasSlept requires k >= 1, kept for symmetry
		// should the classifier boundary condition ever change.
		sleepEpochs := n
		if k > 0 {
			sleepEpochs = int64(e.sleepIndexes[k-1]) + 1
		}
		offset := sleepEpochs*dur + e.bedtime
		sleepOffset = &offset

		onset := *e.sleepLatency + e.bedtime
		sleepOnset = &onset
	}

	// remOnset is remLatency + bedtime, with remLatency already relative
	// to sleep onset. The result is offset from the absolute first-REM
	// timestamp by -sleepLatency; this matches the historical formula and
	// is deliberately left as-is.
	var remOnset *int64
	if e.remLatency != nil {
		onset := *e.remLatency + e.bedtime
		remOnset = &onset
	}

	var sleepTime, waso int64
	if e.hasSlept {
		sleepTime = *sleepOffset - *sleepOnset
		waso = sleepTime - k*dur
	}

	var wakeAfterSleepOffset int64
	if e.hasSlept && !e.isLastEpochSleep {
		lastSleepIdx := int64(e.sleepIndexes[k-1])
		wakeAfterSleepOffset = (n - lastSleepIdx - 1) * dur
	}

	report := domain.MetricsReport{
		domain.MetricSleepOffset:          secondsOrNil(sleepOffset),
		domain.MetricSleepLatency:         secondsOrNil(e.sleepLatency),
		domain.MetricREMLatency:           secondsOrNil(e.remLatency),
		domain.MetricAwakenings:           e.awakenings,
		domain.MetricStageShifts:          e.stageShifts,
		domain.MetricSleepTime:            sleepTime,
		domain.MetricWASO:                 waso,
		domain.MetricSleepEfficiency:      float64(k) / float64(n),
		domain.MetricEfficientSleepTime:   k * dur,
		domain.MetricWakeAfterSleepOffset: wakeAfterSleepOffset,
		domain.MetricSleepOnset:           secondsOrNil(sleepOnset),
		domain.MetricREMOnset:             secondsOrNil(remOnset),
	}

	epochsByStage := make(map[domain.StageLabel]int64, len(e.cfg.Stages))
	for _, s := range e.stages {
		epochsByStage[s]++
	}
	for _, stage := range e.cfg.Stages {
		report[strings.ToUpper(string(stage))+"Time"] = epochsByStage[stage] * dur
	}

	return report
}

// secondsOrNil normalizes an optional metric to a plain int64 or an
// untyped nil, so no pointer types cross the serialization boundary.
func secondsOrNil(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
