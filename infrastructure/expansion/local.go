package expansion

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ideaboard/application/ports"
	"ideaboard/domain/core/valueobjects"

	"go.uber.org/zap"
)

// DefaultAngles are the phrasings LocalGenerator picks from
var DefaultAngles = []string{
	"what would make this easier?",
	"who benefits most?",
	"the opposite approach",
	"a smaller first step",
	"what could go wrong?",
	"how would we measure it?",
	"a cheaper version",
	"combine it with something unrelated",
}

// LocalGenerator produces suggestions without a network call.
// Output is "<text>: <angle>", the angle chosen by the random source.
type LocalGenerator struct {
	mu     sync.Mutex
	random valueobjects.RandomSource
	angles []string
}

// NewLocalGenerator creates a generator. A nil src uses a time-seeded source.
func NewLocalGenerator(src valueobjects.RandomSource, angles ...string) *LocalGenerator {
	if src == nil {
		src = valueobjects.NewTimeSource()
	}
	if len(angles) == 0 {
		angles = DefaultAngles
	}
	return &LocalGenerator{random: src, angles: angles}
}

// Expand returns a suggestion for text. Blank text yields ErrNoSuggestion.
func (g *LocalGenerator) Expand(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoSuggestion
	}

	g.mu.Lock()
	i := int(g.random.Float64() * float64(len(g.angles)))
	g.mu.Unlock()

	if i >= len(g.angles) {
		i = len(g.angles) - 1
	}
	return text + ": " + g.angles[i], nil
}

// Fallback tries primary first and asks secondary only when primary fails.
// A missing suggestion from primary is passed through, not retried.
type Fallback struct {
	primary   ports.Expander
	secondary ports.Expander
	logger    *zap.Logger
}

// WithFallback decorates primary with secondary
func WithFallback(primary, secondary ports.Expander, logger *zap.Logger) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// Expand implements ports.Expander
func (f *Fallback) Expand(ctx context.Context, text string) (string, error) {
	suggestion, err := f.primary.Expand(ctx, text)
	if err == nil || errors.Is(err, ErrNoSuggestion) {
		return suggestion, err
	}

	f.logger.Warn("Primary expansion failed, using fallback", zap.Error(err))
	return f.secondary.Expand(ctx, text)
}
