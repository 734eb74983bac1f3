package sentiment

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"QuantAI/internal/model"
)

// PositiveThreshold is the score above which the summary reports positive sentiment.
const PositiveThreshold = 55.0

// Analyzer produces a 0..100 sentiment score for a ticker.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (model.Sentiment, error)
}

// lexicon holds word polarities in [-1, 1]. Words not listed are neutral and ignored.
var lexicon = map[string]float64{
	"beat":       0.40,
	"beats":      0.40,
	"gain":       0.40,
	"gains":      0.40,
	"growth":     0.30,
	"new":        0.14,
	"record":     0.35,
	"strong":     0.43,
	"upgrade":    0.50,
	"decline":    -0.30,
	"downgrade":  -0.50,
	"lawsuit":    -0.50,
	"loss":       -0.30,
	"miss":       -0.40,
	"volatility": -0.20,
	"weak":       -0.38,
}

// headlineTemplates stand in for a news feed. %s is the ticker.
var headlineTemplates = []string{
	"%s announces new product line.",
	"Analysts upgrade %s rating.",
	"Market volatility affects %s.",
	"%s quarterly earnings beat expectations.",
}

// Stub scores mock headlines with a small lexicon plus seeded noise.
type Stub struct {
	mu     sync.Mutex
	rng    *rand.Rand
	noise  float64
	logger zerolog.Logger
}

// NewStub returns a Stub. A zero seed seeds from the clock.
func NewStub(seed int64, logger zerolog.Logger) *Stub {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Stub{
		rng:    rand.New(rand.NewSource(seed)),
		noise:  0.2,
		logger: logger.With().Str("component", "sentiment").Logger(),
	}
}

func (s *Stub) Analyze(ctx context.Context, ticker string) (model.Sentiment, error) {
	if err := ctx.Err(); err != nil {
		return model.Sentiment{}, err
	}

	headlines := make([]string, len(headlineTemplates))
	var sum float64
	for i, tmpl := range headlineTemplates {
		headlines[i] = fmt.Sprintf(tmpl, ticker)
		sum += Polarity(headlines[i])
	}
	avg := sum / float64(len(headlines))

	s.mu.Lock()
	avg += (s.rng.Float64() - 0.5) * s.noise
	s.mu.Unlock()

	score := clamp((avg+1)*50, 0, 100)
	s.logger.Debug().Str("ticker", ticker).Float64("score", score).Msg("sentiment scored")

	return model.Sentiment{
		Score:     score,
		Headlines: headlines,
		Summary:   Summarize(score),
	}, nil
}

// Polarity averages the lexicon polarity of the words in text. Text with
// no known words has polarity 0.
func Polarity(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	var sum float64
	var hits int
	for _, w := range words {
		if p, ok := lexicon[w]; ok {
			sum += p
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	return sum / float64(hits)
}

func Summarize(score float64) string {
	if score > PositiveThreshold {
		return "Positive market sentiment detected."
	}
	return "Mixed/Neutral sentiment."
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
