// Package intent maps user utterances onto coarse conversation intents with
// keyword matching. Deliberately cheap: classification runs on every turn and
// only has to pick a routing bucket, not understand the sentence.
package intent

import (
	"strings"

	"github.com/rizalarfiyan/tanya/pkg/conversation"
)

// keyword tables per intent, checked in priority order. An utterance that
// mentions both news and dice classifies as news.
var rules = []struct {
	intent   conversation.Intent
	keywords []string
}{
	{conversation.IntentNews, []string{"news", "marketing", "company", "business"}},
	{conversation.IntentDice, []string{"dice", "roll", "game", "random"}},
	{conversation.IntentSearch, []string{"search", "web", "look up", "find"}},
}

// Classifier assigns an Intent to raw user text.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify is case-insensitive and matches substrings, so "Rolling" matches
// "roll". Unmatched text falls through to the general intent.
func (c *Classifier) Classify(text string) conversation.Intent {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.intent
			}
		}
	}
	return conversation.IntentGeneral
}
