package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/piwi3910/RoomFit/internal/logger"
)

// briefMarker appears in the brief system prompt; the stub keys on it.
const briefMarker = "interior design client"

const briefSystemPrompt = "You are an " + briefMarker + ". Describe, in two or three sentences and in the first person, " +
	"who you are and what you want from a single room. Mention concrete furniture and how the room should feel."

const briefUserPrompt = "Write your request for the room."

const feedbackSystemPrompt = "You are the client who wrote the request below. An interior designer has furnished your room. " +
	"Reply in two or three sentences, in the first person, saying what you like and what you would change."

// FeedbackPrompts returns the system and user prompts for client feedback
// on a described design.
func FeedbackPrompts(request, description string, score float64) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "My request: %s\n", request)
	fmt.Fprintf(&b, "The design: %s\n", description)
	fmt.Fprintf(&b, "Match score: %.1f / 5.0", score)
	return feedbackSystemPrompt, b.String()
}

// Brief is the customer request a session is scored against.
type Brief struct {
	Text      string
	Embedding []float64
	// Live is false when the placeholder brief and vector are in use.
	Live bool
}

// Briefer generates customer briefs.
type Briefer struct {
	svc  Service
	dims int
	log  *zap.Logger
}

// NewBriefer returns a Briefer using svc. dims sizes the placeholder vector.
func NewBriefer(svc Service, dims int, log *zap.Logger) *Briefer {
	return &Briefer{svc: svc, dims: dims, log: logger.OrNop(log)}
}

// Placeholder returns the fixed fallback brief.
func (b *Briefer) Placeholder() Brief {
	return Brief{Text: PlaceholderRequest, Embedding: PlaceholderVector(b.dims)}
}

// Generate asks the model for a new brief and embeds it. When the service
// is not ready, or the brief cannot be produced or embedded, the fixed
// placeholder brief is returned instead.
func (b *Briefer) Generate(ctx context.Context) Brief {
	if b.svc == nil || !b.svc.Ready(ctx) {
		b.log.Warn("model service unavailable, using placeholder brief")
		return b.Placeholder()
	}

	text, err := b.svc.Chat(ctx, briefSystemPrompt, briefUserPrompt)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		b.log.Warn("brief generation failed, using placeholder brief", zap.Error(err))
		return b.Placeholder()
	}

	vec, err := b.svc.Embed(ctx, text)
	if err != nil || len(vec) == 0 {
		b.log.Warn("brief embedding failed, using placeholder brief", zap.Error(err))
		return b.Placeholder()
	}

	b.log.Info("generated brief", zap.Int("dims", len(vec)))
	return Brief{Text: text, Embedding: vec, Live: true}
}

// Resolve picks the service evaluations run against and the brief to
// score with. An unready primary falls back to a Stub sized like the
// placeholder vector.
func Resolve(ctx context.Context, primary Service, dims int, log *zap.Logger) (Service, Brief) {
	log = logger.OrNop(log)
	b := NewBriefer(primary, dims, log)
	brief := b.Generate(ctx)
	if brief.Live {
		return primary, brief
	}
	log.Warn("running in fallback mode with the offline stub")
	return NewStub(dims), brief
}
