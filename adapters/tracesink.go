package adapters

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"loadshield/pipeline"
)

// FileTraceSink writes one JSON object per pipeline.TraceEvent to a
// rotating log file, grounded in the teacher's lumberjack-backed file sink
// convention. Used when observability.tracing is enabled with a
// trace-path; tracing to stdout uses a plain io.Writer instead.
type FileTraceSink struct {
	out io.WriteCloser
}

// NewFileTraceSink opens (or rotates into) the given path.
func NewFileTraceSink(path string) *FileTraceSink {
	return &FileTraceSink{out: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    64, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}}
}

type traceRecord struct {
	TraceID string            `json:"trace_id,omitempty"`
	LineNo  uint64            `json:"line_no"`
	Step    string            `json:"step"`
	TagDiff map[string]string `json:"tag_diff,omitempty"`
	Err     string            `json:"error,omitempty"`
}

// OnStep implements pipeline.Tracer.
func (s *FileTraceSink) OnStep(evt pipeline.TraceEvent) {
	rec := traceRecord{
		TraceID: evt.TraceID,
		LineNo:  evt.LineNo,
		Step:    evt.Step,
		TagDiff: evt.TagDiff,
	}
	if evt.Err != nil {
		rec.Err = evt.Err.Error()
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return
	}
	encoded = append(encoded, '\n')
	_, _ = s.out.Write(encoded)
}

// Close releases the underlying writer.
func (s *FileTraceSink) Close() error {
	return s.out.Close()
}

// StdoutTraceSink writes trace events as JSON lines to stdout, used when
// tracing is enabled without a configured file path.
type StdoutTraceSink struct{}

// OnStep implements pipeline.Tracer.
func (StdoutTraceSink) OnStep(evt pipeline.TraceEvent) {
	rec := traceRecord{TraceID: evt.TraceID, LineNo: evt.LineNo, Step: evt.Step, TagDiff: evt.TagDiff}
	if evt.Err != nil {
		rec.Err = evt.Err.Error()
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stdout, string(encoded))
}
