package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"property-analyzer/models"
)

const (
	scoreMethodAI        = "ai"
	scoreMethodHeuristic = "heuristic"
	scoreMethodFallback  = "fallback"

	defaultAITimeout = 20 * time.Second

	fallbackScore     = 70
	fallbackNarrative = "Investment analysis unavailable for this property."
)

const scoringSystemPrompt = "You are a real-estate investment analyst. " +
	"Given a property listing with derived financial metrics, respond with an " +
	"investment score between 0 and 100 (format: \"Score: N\") followed by a " +
	"short justification."

// Completer is the external text-generation capability the scorer prefers
// when configured. Any error or malformed response is treated as
// "unavailable", never as fatal.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Scorer turns an enriched property into a 0-100 investment score. It
// degrades through an ordered strategy chain (AI, heuristic, fixed default)
// and never fails the caller.
type Scorer struct {
	completer Completer
	timeout   time.Duration
	logger    *logrus.Logger
}

// NewScorer builds a Scorer. completer may be nil, in which case the
// heuristic path is the primary strategy. A zero timeout falls back to
// defaultAITimeout.
func NewScorer(completer Completer, timeout time.Duration, logger *logrus.Logger) *Scorer {
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	return &Scorer{completer: completer, timeout: timeout, logger: logger}
}

type strategy struct {
	name string
	run  func(ctx context.Context, p models.EnrichedProperty) (models.ScoreResult, error)
}

// Score evaluates p through the strategy chain, first success wins.
func (s *Scorer) Score(ctx context.Context, p models.EnrichedProperty) models.ScoreResult {
	chain := []strategy{}
	if s.completer != nil {
		chain = append(chain, strategy{name: scoreMethodAI, run: s.aiScore})
	}
	chain = append(chain, strategy{name: scoreMethodHeuristic, run: s.heuristicScore})

	for _, st := range chain {
		result, err := st.run(ctx, p)
		if err != nil {
			s.logger.WithError(err).WithField("strategy", st.name).
				Warn("scoring strategy failed, falling through")
			continue
		}
		return result
	}

	// Last resort: scoring must always produce a result.
	return models.ScoreResult{
		Score:     fallbackScore,
		Narrative: fallbackNarrative,
		Method:    scoreMethodFallback,
	}
}

var aiScoreRe = regexp.MustCompile(`(?i)score\D*(\d+)`)

func (s *Scorer) aiScore(ctx context.Context, p models.EnrichedProperty) (models.ScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := json.Marshal(p)
	if err != nil {
		return models.ScoreResult{}, fmt.Errorf("marshal property: %w", err)
	}

	text, err := s.completer.Complete(ctx, scoringSystemPrompt, string(payload))
	if err != nil {
		return models.ScoreResult{}, fmt.Errorf("completion: %w", err)
	}

	score, err := extractScore(text)
	if err != nil {
		return models.ScoreResult{}, err
	}

	return models.ScoreResult{
		Score:     score,
		Narrative: strings.TrimSpace(text),
		Method:    scoreMethodAI,
	}, nil
}

// extractScore pulls the first integer following the token "score"
// (case-insensitive) out of a model response.
func extractScore(text string) (int, error) {
	m := aiScoreRe.FindStringSubmatch(text)
	if m == nil {
		return 0, errors.New("no score found in completion text")
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", m[1], err)
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("score %d out of range", n)
	}
	return n, nil
}

func (s *Scorer) heuristicScore(_ context.Context, p models.EnrichedProperty) (models.ScoreResult, error) {
	if p.Financials == nil || p.Risk == nil {
		return models.ScoreResult{}, errors.New("property is missing derived metrics")
	}

	yieldComponent := math.Min(p.Financials.RentalYield*10, 50)
	riskComponent := math.Min(float64(p.Risk.Score)*0.3, 30)

	sizeRating := 60.0
	if p.SquareMeters > 70 {
		sizeRating = 80
	}
	sizeComponent := math.Min(sizeRating/20*10, 20)

	score := int(math.Round(yieldComponent + riskComponent + sizeComponent))

	narrative := fmt.Sprintf(
		"Estimated rental yield of %.1f%% with %s risk in an excellent location.",
		p.Financials.RentalYield, strings.ToLower(p.Risk.Category))

	return models.ScoreResult{
		Score:     score,
		Narrative: narrative,
		Method:    scoreMethodHeuristic,
	}, nil
}
