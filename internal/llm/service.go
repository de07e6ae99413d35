// Package llm defines the model service used for embeddings and chat, with
// an Ollama-backed implementation and a deterministic stub.
package llm

import (
	"context"
	"errors"
)

// Service is the capability set the evaluation pipeline needs.
type Service interface {
	// Embed turns text into a vector. An empty vector with a nil error is
	// possible and is treated as a failure by callers.
	Embed(ctx context.Context, text string) ([]float64, error)
	// Chat returns the assistant reply to one system/user prompt pair.
	Chat(ctx context.Context, system, user string) (string, error)
	// Ready reports whether the backend can serve requests.
	Ready(ctx context.Context) bool
}

// ErrNotReady is returned by services that have not finished setup.
var ErrNotReady = errors.New("model service not ready")

// Diagnostic replies shown in place of feedback when chat fails.
const (
	NotReadyReply      = "Model is not ready."
	FeedbackErrorReply = "Error generating feedback."
)

// DiagnosticReply maps a chat failure onto its diagnostic string.
func DiagnosticReply(err error) string {
	if errors.Is(err, ErrNotReady) {
		return NotReadyReply
	}
	return FeedbackErrorReply
}

// ChatOrDiagnostic calls Chat and converts failures into the fixed
// diagnostic strings. It never returns an error.
func ChatOrDiagnostic(ctx context.Context, svc Service, system, user string) string {
	if svc == nil || !svc.Ready(ctx) {
		return NotReadyReply
	}
	reply, err := svc.Chat(ctx, system, user)
	if err != nil {
		return DiagnosticReply(err)
	}
	return reply
}

// PlaceholderRequest is the brief used when no model is available.
const PlaceholderRequest = "I live alone and work from home. I would like a cozy room with a comfortable sofa, " +
	"a desk near the wall for working, a bed, and some plants. Please keep the entrance clear."

// PlaceholderVector returns the constant request embedding used in
// fallback mode: dims copies of 0.1.
func PlaceholderVector(dims int) []float64 {
	v := make([]float64, dims)
	for i := range v {
		v[i] = 0.1
	}
	return v
}
