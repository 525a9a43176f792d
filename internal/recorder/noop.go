package recorder

import "context"

// NoopRecorder is used when no history database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordIngestion(_ context.Context, _ Entry) error { return nil }
func (n *NoopRecorder) Recent(_ context.Context, _ int) ([]Entry, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                     { return nil }
