package classifier

import (
	"regexp"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

// agentKeywords maps each agent to its static table of trigger phrases.
// Scores accrue per matched phrase, weighted by word count, so multi-word
// phrases like "how do i get" outrank incidental single-word hits.
var agentKeywords = map[string][]string{
	models.AgentNavigation: {
		"where is", "where are", "how do i get", "how far", "directions",
		"navigate", "take me", "route", "nearest", "closest", "nearby",
		"close by", "around here", "location", "map", "distance", "address",
		"get to", "way to",
	},
	models.AgentHistory: {
		"history", "historical", "tell me about", "what happened",
		"story of", "story behind", "who was", "who built", "when was",
		"founded", "built", "heritage", "monument", "marker", "battle",
		"war", "century", "original", "used to be", "back then",
	},
	models.AgentExperience: {
		"recommend", "suggest", "should i", "what should", "things to do",
		"worth seeing", "worth visiting", "attractions", "activities",
		"experience", "explore", "fun", "interesting", "restaurant", "food",
		"eat", "drink", "coffee", "do",
	},
	models.AgentPersonalization: {
		"my name is", "call me", "i prefer", "i like", "i love", "i hate",
		"i don't like", "remember", "my favorite", "favourite", "preference",
		"privacy", "don't track", "forget me", "stop remembering",
		"my trip", "i'm planning", "scenic", "avoid highways",
	},
}

var wholeWordPatterns = buildWholeWordPatterns()

// buildWholeWordPatterns precompiles a word-boundary matcher per phrase so
// whole-word bonuses don't fire on substrings of larger words ("art" inside
// "department").
func buildWholeWordPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, phrases := range agentKeywords {
		for _, phrase := range phrases {
			if _, ok := patterns[phrase]; ok {
				continue
			}
			patterns[phrase] = regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
		}
	}
	return patterns
}

var (
	// namePattern spots explicit name introductions
	namePattern = regexp.MustCompile(`(?i)\b(?:my name is|call me|i am|i'm)\s+([a-z][a-z'\-]*)`)
	// pronounPattern spots any first-person personal pronoun as a whole word
	pronounPattern = regexp.MustCompile(`\b(?:i|my|me|mine|myself)\b`)
	// recommendWhatDoPattern spots "what ... do" phrasings ("what should we do
	// around here", "what is there to do")
	recommendWhatDoPattern = regexp.MustCompile(`\bwhat\b.*\bdo\b`)
)

// questionWords are the leading words that signal an information-seeking
// question (boosts the history agent). "where" is handled separately for
// navigation.
var questionWords = map[string]bool{
	"what": true,
	"who":  true,
	"when": true,
	"how":  true,
	"why":  true,
}

// Matched-signal markers for global pattern boosts.
const (
	SignalQuestion         = "pattern:question"
	SignalWhere            = "pattern:where"
	SignalPersonalPronoun  = "pattern:personal_pronoun"
	SignalNameIntroduction = "pattern:name_introduction"
	SignalRecommendation   = "pattern:recommendation"
)
