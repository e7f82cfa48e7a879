package domain

import (
	"testing"
)

func TestStageLabel_IsWake(t *testing.T) {
	if !StageWake.IsWake() {
		t.Error("Expected W to be wake")
	}
	for _, s := range []StageLabel{StageN1, StageN2, StageN3, StageREM} {
		if s.IsWake() {
			t.Errorf("Expected %s not to be wake", s)
		}
	}
}

func TestStageSequence_ValueScan(t *testing.T) {
	seq := StageSequence{StageWake, StageN2, StageREM}

	val, err := seq.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if val.(string) != `["W","N2","REM"]` {
		t.Errorf("Value() = %v, want [\"W\",\"N2\",\"REM\"]", val)
	}

	var scanned StageSequence
	if err := scanned.Scan(val.(string)); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(scanned) != 3 || scanned[0] != StageWake || scanned[2] != StageREM {
		t.Errorf("Scan() = %v, want %v", scanned, seq)
	}
}

func TestStageSequence_ScanNil(t *testing.T) {
	seq := StageSequence{StageWake}
	if err := seq.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error: %v", err)
	}
	if seq != nil {
		t.Errorf("Scan(nil) = %v, want nil", seq)
	}
}

func TestStageSequence_ScanUnsupported(t *testing.T) {
	var seq StageSequence
	if err := seq.Scan(42); err == nil {
		t.Error("Expected error scanning int")
	}
}

func TestMetricsReport_ValueScan(t *testing.T) {
	report := MetricsReport{
		MetricSleepEfficiency: 0.85,
		MetricAwakenings:      int64(2),
		MetricSleepLatency:    nil,
	}

	val, err := report.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	var scanned MetricsReport
	if err := scanned.Scan([]byte(val.(string))); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if scanned[MetricSleepEfficiency] != 0.85 {
		t.Errorf("sleepEfficiency = %v, want 0.85", scanned[MetricSleepEfficiency])
	}
	// JSON round-trip turns counts into float64
	if scanned[MetricAwakenings] != float64(2) {
		t.Errorf("awakenings = %v, want 2", scanned[MetricAwakenings])
	}
	if v, ok := scanned[MetricSleepLatency]; !ok || v != nil {
		t.Errorf("sleepLatency = %v, want present and nil", v)
	}
}
