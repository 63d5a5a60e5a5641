package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSeriesLength is returned when created and prices differ in length.
var ErrSeriesLength = errors.New("price series arrays differ in length")

// PriceSeries is a chronological list of price observations for one pair.
type PriceSeries struct {
	Created []time.Time `json:"created"`
	Prices  []float64   `json:"prices"`
}

// Len returns the number of points.
func (s PriceSeries) Len() int {
	return len(s.Prices)
}

// Last returns the most recent price.
func (s PriceSeries) Last() (float64, bool) {
	if len(s.Prices) == 0 {
		return 0, false
	}
	return s.Prices[len(s.Prices)-1], true
}

// Validate checks the parallel-array invariant and chronological order.
func (s PriceSeries) Validate() error {
	if len(s.Created) != len(s.Prices) {
		return fmt.Errorf("%w: created=%d prices=%d", ErrSeriesLength, len(s.Created), len(s.Prices))
	}
	for i := 1; i < len(s.Created); i++ {
		if s.Created[i].Before(s.Created[i-1]) {
			return fmt.Errorf("price series not chronological at index %d", i)
		}
	}
	return nil
}

// UnmarshalJSON accepts both the current "created" key and the older
// "timestamps" key carrying epoch seconds.
func (s *PriceSeries) UnmarshalJSON(data []byte) error {
	var aux struct {
		Created    []flexTime `json:"created"`
		Timestamps []flexTime `json:"timestamps"`
		Prices     []float64  `json:"prices"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	stamps := aux.Created
	if len(stamps) == 0 {
		stamps = aux.Timestamps
	}

	s.Created = make([]time.Time, len(stamps))
	for i, t := range stamps {
		s.Created[i] = time.Time(t)
	}
	s.Prices = aux.Prices
	if s.Prices == nil {
		s.Prices = []float64{}
	}

	return s.Validate()
}
