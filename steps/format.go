package steps

import (
	"loadshield/domain"
	"loadshield/pipeline"
)

// Format implements the format step (spec.md §4.8): a pure projection from
// Decision to the externally visible OutputRow shape.
type Format struct{}

// Name implements pipeline.Step.
func (Format) Name() string { return "format" }

// Run implements pipeline.Step.
func (Format) Run(msg pipeline.Message, ctx *pipeline.Context) ([]pipeline.Message, error) {
	d, ok := msg.(domain.Decision)
	if !ok {
		return pipeline.One(msg), nil
	}
	return pipeline.One(d.Project()), nil
}
