package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StageLabel is one scored sleep stage category.
// @Description Sleep stage label: W (wake), N1/N2/N3 (non-REM depth), REM.
type StageLabel string

const (
	// StageWake is the distinguished "not asleep" category.
	StageWake StageLabel = "W"
	StageN1   StageLabel = "N1"
	StageN2   StageLabel = "N2"
	StageN3   StageLabel = "N3"
	// StageREM is the distinguished rapid-eye-movement category.
	StageREM StageLabel = "REM"
)

// KnownStages returns the scored stage categories in conventional depth order.
// The order is also the order of <STAGE>Time keys in reports.
func KnownStages() []StageLabel {
	return []StageLabel{StageWake, StageN1, StageN2, StageN3, StageREM}
}

// IsWake reports whether the label is the wake category.
func (s StageLabel) IsWake() bool {
	return s == StageWake
}

// StageSequence is an ordered hypnogram, one label per scored epoch.
// It is stored as a jsonb column.
type StageSequence []StageLabel

// Value implements driver.Valuer for gorm/jsonb storage.
func (s StageSequence) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for gorm/jsonb retrieval.
func (s *StageSequence) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into StageSequence", src)
	}
}
