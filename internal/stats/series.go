// Package stats fetches the traffic statistics shown on the dashboard charts.
package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Series is one chart data set. On the wire its labels are the "type"
// field, which is a single string for one-line charts.
type Series struct {
	Labels   []string  `json:"-"`
	Quantity []float64 `json:"-"`
}

type wireSeries struct {
	Type     json.RawMessage `json:"type"`
	Quantity []float64       `json:"quantity"`
}

// UnmarshalJSON accepts "type" as a string or a string array.
func (s *Series) UnmarshalJSON(data []byte) error {
	var w wireSeries
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	s.Labels = nil
	typ := bytes.TrimSpace(w.Type)
	switch {
	case len(typ) == 0 || string(typ) == "null":
	case typ[0] == '[':
		if err := json.Unmarshal(typ, &s.Labels); err != nil {
			return fmt.Errorf("series type: %w", err)
		}
	default:
		var label string
		if err := json.Unmarshal(typ, &label); err != nil {
			return fmt.Errorf("series type: %w", err)
		}
		s.Labels = []string{label}
	}
	s.Quantity = w.Quantity
	if s.Quantity == nil {
		s.Quantity = []float64{}
	}
	return nil
}

// MarshalJSON writes a single label as a plain string.
func (s Series) MarshalJSON() ([]byte, error) {
	var typ any = s.Labels
	if len(s.Labels) == 1 {
		typ = s.Labels[0]
	}
	quantity := s.Quantity
	if quantity == nil {
		quantity = []float64{}
	}
	return json.Marshal(struct {
		Type     any       `json:"type"`
		Quantity []float64 `json:"quantity"`
	}{typ, quantity})
}

// Clone returns a deep copy.
func (s Series) Clone() Series {
	return Series{Labels: slices.Clone(s.Labels), Quantity: slices.Clone(s.Quantity)}
}

// Mean returns the average quantity, 0 for an empty series.
func (s Series) Mean() float64 {
	if len(s.Quantity) == 0 {
		return 0
	}
	var sum float64
	for _, q := range s.Quantity {
		sum += q
	}
	return sum / float64(len(s.Quantity))
}

func zeros(n int) []float64 {
	return make([]float64, n)
}
