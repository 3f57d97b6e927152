package store

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a field that was not supplied from one explicitly set to null.
// The zero value is "not supplied".
type Optional[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: &v} }

func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// arg is the SQL parameter for the value; NULL when unset or null.
func (o Optional[T]) arg() any {
	if o.Value == nil {
		return nil
	}
	return *o.Value
}

// WellnessPatch carries the fields a wellness submission supplied.
type WellnessPatch struct {
	MoodScore   Optional[int]     `json:"mood_score"`
	SleepHours  Optional[float64] `json:"sleep_hours"`
	WaterIntake Optional[float64] `json:"water_intake"`
	StressLevel Optional[int]     `json:"stress_level"`
	Notes       Optional[string]  `json:"notes"`
}

func (p WellnessPatch) Empty() bool {
	return !p.MoodScore.Set && !p.SleepHours.Set && !p.WaterIntake.Set && !p.StressLevel.Set && !p.Notes.Set
}
