// Package analysis scores recent conversation against the keyword profiles
// of an agent's siblings and emits routing recommendations plus one
// telemetry record per analysis.
package analysis

import (
	"strings"
	"unicode"

	"github.com/loreweave/loreweave/core"
)

// stopWords are dropped when deriving keywords from specialization text.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "can": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {},
	"that": {}, "the": {}, "their": {}, "this": {}, "to": {}, "with": {},
	"you": {}, "your": {}, "all": {}, "about": {}, "other": {}, "such": {},
	"when": {}, "which": {}, "will": {}, "who": {}, "what": {}, "how": {},
}

// TopicMap is the keyword index derived from sibling agent specializations.
// AgentKeywords preserves first-seen keyword order per agent; KeywordAgents
// dedups agent names per keyword.
type TopicMap struct {
	AgentKeywords map[string][]string
	KeywordAgents map[string][]string
	agentOrder    []string
}

// BuildTopicMap tokenizes each agent's specialization text (split on
// non-alphanumeric runs, lowercased, stop-words dropped, deduped preserving
// order) and builds the forward and reverse indexes.
func BuildTopicMap(agents []*core.AgentDefinition) *TopicMap {
	tm := &TopicMap{
		AgentKeywords: make(map[string][]string, len(agents)),
		KeywordAgents: make(map[string][]string),
	}

	for _, agent := range agents {
		keywords := Tokenize(agent.Specialization)
		tm.AgentKeywords[agent.Name] = keywords
		tm.agentOrder = append(tm.agentOrder, agent.Name)

		for _, kw := range keywords {
			if !contains(tm.KeywordAgents[kw], agent.Name) {
				tm.KeywordAgents[kw] = append(tm.KeywordAgents[kw], agent.Name)
			}
		}
	}

	return tm
}

// Agents returns the indexed agent names in insertion order.
func (tm *TopicMap) Agents() []string {
	names := make([]string, len(tm.agentOrder))
	copy(names, tm.agentOrder)
	return names
}

// Score counts how many of the agent's keywords occur in text (lowercased
// token match).
func (tm *TopicMap) Score(agentName, text string) int {
	tokens := tokenSet(text)
	score := 0
	for _, kw := range tm.AgentKeywords[agentName] {
		if _, ok := tokens[kw]; ok {
			score++
		}
	}
	return score
}

// DominantAgent returns the agent whose keyword profile best matches text.
// Ties resolve to the earlier-registered agent; a zero score for every agent
// yields ("", 0).
func (tm *TopicMap) DominantAgent(text string) (string, int) {
	best, bestScore := "", 0
	for _, name := range tm.agentOrder {
		if score := tm.Score(name, text); score > bestScore {
			best, bestScore = name, score
		}
	}
	return best, bestScore
}

// Tokenize splits text on non-alphanumeric runs, lowercases, drops
// stop-words and single characters, and dedups preserving first-seen order.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokenize(text) {
		set[t] = struct{}{}
	}
	return set
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
