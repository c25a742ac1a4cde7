package core

import "strings"

// Keyword tables for the heuristic classifier. Matching is substring-based
// over normalized text, so multi-word phrases work without tokenization.

var bugWords = []string{
	"bug",
	"crash",
	"freeze",
	"hang",
	"stuck",
	"not working",
	"doesn't work",
	"broken",
	"error",
	"exception",
	"traceback",
	"fail",
	"failed",
	"failure",
	"issue",
	"can't",
	"cannot",
	"unable",
	"won't",
	"does not",
	"wrong",
}

var featureWords = []string{
	"feature",
	"request",
	"could you",
	"can you add",
	"please add",
	"wishlist",
	"support",
	"would be great",
	"enhancement",
	"improve",
	"improvement",
}

var questionWords = []string{
	"how do i",
	"how to",
	"what is",
	"where is",
	"can i",
	"is it possible",
	"question",
	"help",
	"why",
}

var accountWords = []string{
	"login",
	"log in",
	"sign in",
	"sign-in",
	"account",
	"subscription",
	"billing",
	"refund",
	"payment",
	"charge",
	"invoice",
	"receipt",
	"plan",
	"upgrade",
	"cancel",
}

var p0Words = []string{
	"data loss",
	"lost emails",
	"lost mail",
	"security",
	"breach",
	"leak",
	"cannot access",
	"locked out",
	"account hacked",
}

var p1Words = []string{
	"crash",
	"freeze",
	"hang",
	"stuck",
	"cannot send",
	"can't send",
	"cannot receive",
	"can't receive",
	"urgent",
	"immediately",
	"asap",
}

var p2Words = []string{
	"slow",
	"lag",
	"delay",
	"sometimes",
	"intermittent",
	"occasionally",
}

// NormalizeText joins the non-empty parts, lowercases and collapses all
// whitespace runs to single spaces.
func NormalizeText(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	txt := strings.ToLower(strings.TrimSpace(strings.Join(kept, "\n")))
	return whitespacePattern.ReplaceAllString(txt, " ")
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Classify buckets normalized text. Account terms are checked first on
// purpose: billing mail routinely says "issue" and would otherwise land in
// the bug bucket.
func Classify(text string) Classification {
	switch {
	case containsAny(text, accountWords):
		return ClassAccountSupport
	case containsAny(text, bugWords):
		return ClassBug
	case containsAny(text, featureWords):
		return ClassFeatureRequest
	case containsAny(text, questionWords):
		return ClassQuestion
	default:
		return ClassOther
	}
}

// Prioritize picks the highest matching priority band for normalized text.
func Prioritize(text string) Priority {
	switch {
	case containsAny(text, p0Words):
		return PriorityP0
	case containsAny(text, p1Words):
		return PriorityP1
	case containsAny(text, p2Words):
		return PriorityP2
	default:
		return PriorityP3
	}
}
