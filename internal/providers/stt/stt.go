package stt

import "context"

// Provider re-transcribes recorded answer audio. Live recognition happens
// in the candidate's browser; this path only reconciles the report
// transcript afterwards.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}
