package pipeline

import "fmt"

// BoundStep names one step instance within a scenario. Parameters were
// validated by whatever built the scenario (the composition package); by
// the time a Scenario exists, all steps are ready to run.
type BoundStep struct {
	StepName string
	Impl     Step
}

// Scenario is an immutable ordered list of bound steps (spec.md §4.1).
type Scenario struct {
	steps []BoundStep
}

// NewScenario validates that every bound step has a non-empty name and a
// non-nil implementation, then freezes the ordered list.
func NewScenario(steps []BoundStep) (*Scenario, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("pipeline: scenario must have at least one step")
	}
	frozen := make([]BoundStep, len(steps))
	seen := make(map[string]int, len(steps))
	for i, s := range steps {
		if s.StepName == "" {
			return nil, fmt.Errorf("pipeline: step at position %d has no name", i)
		}
		if s.Impl == nil {
			return nil, fmt.Errorf("pipeline: step %q has no implementation", s.StepName)
		}
		seen[s.StepName]++
		frozen[i] = s
	}
	return &Scenario{steps: frozen}, nil
}

// Steps returns the ordered, immutable step list.
func (s *Scenario) Steps() []BoundStep {
	return s.steps
}

// Len reports the number of bound steps.
func (s *Scenario) Len() int {
	return len(s.steps)
}
