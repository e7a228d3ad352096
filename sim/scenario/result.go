package scenario

import (
	"github.com/inference-sim/broadcast-sim/sim"
	"github.com/inference-sim/broadcast-sim/sim/graph"
)

// EdgeRecord is the serializable form of an edge that carried the broadcast.
type EdgeRecord struct {
	From     string  `json:"from" yaml:"from"`
	To       string  `json:"to" yaml:"to"`
	Strength float64 `json:"strength,omitempty" yaml:"strength,omitempty"`
	Kind     string  `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Result summarizes one scenario run.
type Result struct {
	Origin    string         `json:"origin" yaml:"origin"`
	Seed      int64          `json:"seed" yaml:"seed"`
	Completed bool           `json:"completed" yaml:"completed"`
	Path      [][]EdgeRecord `json:"path" yaml:"path"`
	History   []sim.Snapshot `json:"history" yaml:"history"`
	Reached   []string       `json:"reached" yaml:"reached"`
	Final     sim.Snapshot   `json:"final" yaml:"final"`
}

// Run builds the simulation and advances it spec.Steps steps, or to
// exhaustion when Steps is 0.
func (s *Spec) Run() (*Result, error) {
	simulation, err := s.Build()
	if err != nil {
		return nil, err
	}
	k := sim.AllSteps
	if s.Steps > 0 {
		k = s.Steps
	}
	return Collect(simulation, s.Seed, k), nil
}

// Collect advances simulation through k steps (sim.AllSteps for all) and
// converts what it computed into a Result.
func Collect(simulation *sim.Simulation[string], seed int64, k int) *Result {
	path := simulation.Path(k)
	res := &Result{
		Origin:    simulation.OriginatingNode(),
		Seed:      seed,
		Completed: simulation.Completed(),
		Path:      make([][]EdgeRecord, 0, len(path)),
		History:   simulation.Transmission().History(),
		Reached:   simulation.Transmission().BroadcastOrder(),
	}
	for _, step := range path {
		res.Path = append(res.Path, records(step))
	}
	if final, err := simulation.Final(); err == nil {
		res.Final = final
	} else {
		res.Final = sim.Snapshot{Broadcasts: simulation.Transmission().Broadcasts()}
	}
	return res
}

func records(step []graph.Edge[string]) []EdgeRecord {
	out := make([]EdgeRecord, 0, len(step))
	for _, e := range step {
		out = append(out, EdgeRecord{From: e.From, To: e.To, Strength: e.Strength(), Kind: e.Kind()})
	}
	return out
}
