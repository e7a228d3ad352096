package sim

import "fmt"

// Snapshot records transmission counters at the end of one step.
type Snapshot struct {
	Steps      int `json:"steps" yaml:"steps"`
	Broadcasts int `json:"broadcasts" yaml:"broadcasts"`
	Tests      int `json:"tests" yaml:"tests"`
}

func (s Snapshot) String() string {
	return fmt.Sprintf("steps=%d broadcasts=%d tests=%d", s.Steps, s.Broadcasts, s.Tests)
}
