package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metric names appearing in every report, beyond the per-stage time keys.
const (
	MetricSleepOffset          = "sleepOffset"
	MetricSleepLatency         = "sleepLatency"
	MetricREMLatency           = "remLatency"
	MetricAwakenings           = "awakenings"
	MetricStageShifts          = "stageShifts"
	MetricSleepTime            = "sleepTime"
	MetricWASO                 = "WASO"
	MetricSleepEfficiency      = "sleepEfficiency"
	MetricEfficientSleepTime   = "efficientSleepTime"
	MetricWakeAfterSleepOffset = "wakeAfterSleepOffset"
	MetricSleepOnset           = "sleepOnset"
	MetricREMOnset             = "remOnset"
)

// MetricsReport is the flat metric mapping produced by the hypnogram engine.
// Values are int64 (seconds or counts), float64 (ratios) or nil for metrics
// that are undefined when the subject never slept. The mapping serializes to
// JSON as-is and is stored as a jsonb column.
type MetricsReport map[string]any

// Value implements driver.Valuer for gorm/jsonb storage.
func (r MetricsReport) Value() (driver.Value, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for gorm/jsonb retrieval.
func (r *MetricsReport) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into MetricsReport", src)
	}
}
