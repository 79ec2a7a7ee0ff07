package steps

import (
	"errors"
	"testing"

	"loadshield/domain"
	"loadshield/pipeline"
)

type fakeSink struct {
	rows []domain.OutputRow
	err  error
}

func (f *fakeSink) WriteRow(row domain.OutputRow) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

func TestWriteSendsRowToSinkAndProducesNothing(t *testing.T) {
	sink := &fakeSink{}
	out, err := Write{Sink: sink}.Run(domain.OutputRow{ID: "1", CustomerID: "2", Accepted: true}, pipeline.NewContext("", 1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != nil {
		t.Fatalf("write step must be terminal, got %v", out)
	}
	if len(sink.rows) != 1 || sink.rows[0].ID != "1" {
		t.Fatalf("sink did not receive the row: %+v", sink.rows)
	}
}

func TestWritePropagatesSinkError(t *testing.T) {
	sink := &fakeSink{err: errors.New("disk full")}
	_, err := Write{Sink: sink}.Run(domain.OutputRow{}, pipeline.NewContext("", 1))
	if err == nil {
		t.Fatal("expected sink error to propagate")
	}
}

func TestWriteIgnoresNonOutputRow(t *testing.T) {
	sink := &fakeSink{}
	out, err := Write{Sink: sink}.Run("not a row", pipeline.NewContext("", 1))
	if err != nil || out != nil {
		t.Fatalf("expected silent drop, got out=%v err=%v", out, err)
	}
	if len(sink.rows) != 0 {
		t.Fatalf("sink must not receive non-row messages")
	}
}
