package ensemble

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
)

// ErrNoValues is returned when summarizing an empty sample.
var ErrNoValues = errors.New("ensemble: no values to summarize")

// Summary describes the distribution of one counter across replicates.
// StdDev is the population standard deviation.
type Summary struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	Min    float64 `json:"min" yaml:"min"`
	Median float64 `json:"median" yaml:"median"`
	P90    float64 `json:"p90" yaml:"p90"`
	Max    float64 `json:"max" yaml:"max"`
}

func (s Summary) String() string {
	return fmt.Sprintf("mean=%.3f sd=%.3f min=%.0f p50=%.1f p90=%.1f max=%.0f",
		s.Mean, s.StdDev, s.Min, s.Median, s.P90, s.Max)
}

// Summarize computes a Summary of values. values must not be empty.
func Summarize(values []float64) (Summary, error) {
	data := stats.Float64Data(values)
	if data.Len() == 0 {
		return Summary{}, ErrNoValues
	}
	var (
		s   Summary
		err error
	)
	if s.Mean, err = data.Mean(); err != nil {
		return Summary{}, err
	}
	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return Summary{}, err
	}
	if s.Min, err = data.Min(); err != nil {
		return Summary{}, err
	}
	if s.Median, err = data.Median(); err != nil {
		return Summary{}, err
	}
	if s.Max, err = data.Max(); err != nil {
		return Summary{}, err
	}
	// Percentile rejects ranks below the first sample; with few replicates
	// the 90th percentile is the maximum.
	if s.P90, err = data.Percentile(90); err != nil {
		s.P90 = s.Max
	}
	return s, nil
}
