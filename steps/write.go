package steps

import (
	"loadshield/domain"
	"loadshield/pipeline"
)

// RowWriter is the port the write step calls into; adapters.NDJSONWriter
// implements it (spec.md §4.8, §6). Only this step calls the sink.
type RowWriter interface {
	WriteRow(domain.OutputRow) error
}

// Write implements the write step (spec.md §4.8): the only filesystem sink
// in the core path. It produces no further messages; the row has reached
// its terminal destination.
type Write struct {
	Sink RowWriter
}

// Name implements pipeline.Step.
func (Write) Name() string { return "write" }

// Run implements pipeline.Step.
func (w Write) Run(msg pipeline.Message, ctx *pipeline.Context) ([]pipeline.Message, error) {
	row, ok := msg.(domain.OutputRow)
	if !ok {
		return nil, nil
	}
	if err := w.Sink.WriteRow(row); err != nil {
		return nil, err
	}
	return nil, nil
}
