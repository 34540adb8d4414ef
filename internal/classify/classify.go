// Package classify holds the keyword rules that route a chat message: casual versus
// professional intent, the knowledge domain of a professional question, and whether a
// question is too vague to answer without asking for more context.
package classify

import (
	"unicode/utf8"

	"github.com/dwizi/esg-advisor/internal/knowledge"
)

type Intent string

const (
	IntentChat         Intent = "chat"
	IntentProfessional Intent = "professional"
)

// shortMessageRunes is the length below which a vague request is considered under-specified.
const shortMessageRunes = 50

type Classifier struct {
	tables *knowledge.Tables
}

func New(tables *knowledge.Tables) *Classifier {
	return &Classifier{tables: tables}
}

// RecognizeIntent returns IntentChat only when a casual term is present and no
// professional term is. Everything else, including empty input, is professional.
// Domain keywords count as professional terms and ASCII casual terms match whole words only.
func (c *Classifier) RecognizeIntent(message string) Intent {
	if knowledge.ContainsAny(message, c.tables.ProfessionalTerms) {
		return IntentProfessional
	}
	if knowledge.ContainsAnyWord(message, c.tables.CasualTerms) {
		return IntentChat
	}
	return IntentProfessional
}

// ClassifyQuestion returns the tag of the first domain rule with a keyword in message.
func (c *Classifier) ClassifyQuestion(message string) knowledge.DomainTag {
	for _, rule := range c.tables.Domains {
		if knowledge.ContainsAny(message, rule.Keywords) {
			return rule.Tag
		}
	}
	return knowledge.TagGeneral
}

func (c *Classifier) NeedsFollowup(message string) bool {
	if utf8.RuneCountInString(message) >= shortMessageRunes {
		return false
	}
	if !knowledge.ContainsAny(message, c.tables.VagueTerms) {
		return false
	}
	return !knowledge.ContainsAny(message, c.tables.ContextTerms)
}
