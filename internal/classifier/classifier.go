// Package classifier maps raw user text to a ranked set of agent candidates
// using static keyword tables and global pattern boosts. It performs literal
// matching only; semantic understanding belongs to the downstream LLM.
package classifier

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

const (
	// keywordWeight is the score contribution per word of a matched phrase
	keywordWeight = 0.3
	// wholeWordBonus rewards matches on word boundaries over substrings
	wholeWordBonus = 0.2
	// overMatchThreshold is the distinct-phrase count beyond which the score
	// is damped; generic input that trips many phrases is a weak signal
	overMatchThreshold = 5
	// overMatchPenalty multiplies the score when the threshold is exceeded
	overMatchPenalty = 0.8

	boostQuestion       = 0.2
	boostWhere          = 0.15
	boostPronoun        = 0.15
	boostNameIntro      = 0.5
	boostRecommendation = 0.2

	// confidenceThreshold is the minimum top score to act without hedging
	confidenceThreshold = 0.6
	// ambiguityGap is the top-two score gap below which the result is ambiguous
	ambiguityGap = 0.2
)

// Score is one agent's ranked classification entry.
type Score struct {
	Agent      string   `json:"agent"`
	Confidence float64  `json:"confidence"`
	Matches    []string `json:"matches,omitempty"`
	Rationale  string   `json:"rationale"`
}

// Classification is the full ranked result for one input.
type Classification struct {
	Ranked    []Score `json:"ranked"`
	Confident bool    `json:"confident"`
	Ambiguous bool    `json:"ambiguous"`
}

// Top returns the highest-ranked score, or a zero Score when nothing matched.
func (c Classification) Top() Score {
	if len(c.Ranked) == 0 {
		return Score{}
	}
	return c.Ranked[0]
}

// Classifier scores free text against each agent's keyword table.
type Classifier struct {
	logger *zap.Logger
}

// New creates a classifier.
func New(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{logger: logger}
}

// Classify produces a ranked score per agent. Errors are impossible by
// construction; an input that matches nothing yields zero scores everywhere.
func (c *Classifier) Classify(input string) Classification {
	lower := strings.ToLower(strings.TrimSpace(input))

	scores := make(map[string]*Score, len(models.AgentNames))
	for _, agent := range models.AgentNames {
		scores[agent] = c.scoreAgent(agent, lower)
	}

	c.applyBoosts(lower, scores)

	ranked := make([]Score, 0, len(scores))
	for _, s := range scores {
		s.Confidence = clampRound(s.Confidence)
		ranked = append(ranked, *s)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return models.AgentPriority(ranked[i].Agent) < models.AgentPriority(ranked[j].Agent)
	})

	result := Classification{Ranked: ranked}
	result.Confident = len(ranked) > 0 && ranked[0].Confidence >= confidenceThreshold

	scored := 0
	for _, s := range ranked {
		if s.Confidence > 0 {
			scored++
		}
	}
	if scored >= 2 {
		result.Ambiguous = ranked[0].Confidence-ranked[1].Confidence < ambiguityGap
	}

	c.logger.Debug("classified_input",
		zap.String("top_agent", result.Top().Agent),
		zap.Float64("top_confidence", result.Top().Confidence),
		zap.Bool("confident", result.Confident),
		zap.Bool("ambiguous", result.Ambiguous),
	)
	return result
}

// scoreAgent runs the keyword table for one agent against the input.
func (c *Classifier) scoreAgent(agent, lower string) *Score {
	s := &Score{Agent: agent}

	total := 0.0
	for _, phrase := range agentKeywords[agent] {
		if !strings.Contains(lower, phrase) {
			continue
		}
		total += keywordWeight * float64(len(strings.Fields(phrase)))
		if wholeWordPatterns[phrase].MatchString(lower) {
			total += wholeWordBonus
		}
		s.Matches = append(s.Matches, phrase)
	}
	if len(s.Matches) > overMatchThreshold {
		total *= overMatchPenalty
	}
	s.Confidence = clampRound(total)

	if len(s.Matches) > 0 {
		s.Rationale = fmt.Sprintf("matched %d keyword(s): %s", len(s.Matches), strings.Join(s.Matches, ", "))
	} else {
		s.Rationale = "no keyword matches"
	}
	return s
}

// applyBoosts evaluates global patterns once against the whole input and
// credits exactly one agent per pattern.
func (c *Classifier) applyBoosts(lower string, scores map[string]*Score) {
	firstWord := ""
	if fields := strings.Fields(lower); len(fields) > 0 {
		firstWord = strings.Trim(fields[0], ",.!?")
	}

	if questionWords[firstWord] || strings.HasPrefix(lower, "tell me") {
		boost(scores[models.AgentHistory], boostQuestion, SignalQuestion)
	}
	if firstWord == "where" {
		boost(scores[models.AgentNavigation], boostWhere, SignalWhere)
	}
	if pronounPattern.MatchString(lower) {
		boost(scores[models.AgentPersonalization], boostPronoun, SignalPersonalPronoun)
	}
	if namePattern.MatchString(lower) {
		boost(scores[models.AgentPersonalization], boostNameIntro, SignalNameIntroduction)
	}
	if isRecommendationSeeking(lower) {
		boost(scores[models.AgentExperience], boostRecommendation, SignalRecommendation)
	}
}

func boost(s *Score, amount float64, signal string) {
	s.Confidence += amount
	s.Matches = append(s.Matches, signal)
	if s.Rationale == "no keyword matches" {
		s.Rationale = "boosted by " + signal
	} else {
		s.Rationale += "; boosted by " + signal
	}
}

func isRecommendationSeeking(lower string) bool {
	if strings.Contains(lower, "recommend") || strings.Contains(lower, "suggest") {
		return true
	}
	if strings.Contains(lower, "should i") {
		return true
	}
	return recommendWhatDoPattern.MatchString(lower)
}

// clampRound clamps to [0, 1] and rounds to 2 decimals.
func clampRound(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return math.Round(v*100) / 100
}
