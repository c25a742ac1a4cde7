package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{
			name:  "joins and lowercases",
			parts: []string{"App CRASHES", "on send"},
			want:  "app crashes on send",
		},
		{
			name:  "collapses whitespace",
			parts: []string{"too   many\n\n\tspaces"},
			want:  "too many spaces",
		},
		{
			name:  "skips empty parts",
			parts: []string{"", "only this", ""},
			want:  "only this",
		},
		{
			name:  "all empty",
			parts: []string{"", ""},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.parts...))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Classification
	}{
		{"bug keyword", "the app crashes on startup", ClassBug},
		{"feature keyword", "could you add dark mode", ClassFeatureRequest},
		{"question keyword", "how do i export my data", ClassQuestion},
		{"account keyword", "problem with my subscription", ClassAccountSupport},
		{"no keywords", "12345 67890", ClassOther},
		{"empty", "", ClassOther},
		// Billing mail says "issue" all the time; account wins over bug.
		{"account beats bug", "billing issue with my last invoice", ClassAccountSupport},
		{"bug beats feature", "error when i use the export feature", ClassBug},
		{"feature beats question", "question: could you add filters", ClassFeatureRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestPrioritize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Priority
	}{
		{"p0 data loss", "i think there was data loss after sync", PriorityP0},
		{"p0 lockout", "i am locked out of everything", PriorityP0},
		{"p1 crash", "the editor crashes constantly", PriorityP1},
		{"p1 urgent", "please fix this urgent problem", PriorityP1},
		{"p2 slow", "the app is very slow lately", PriorityP2},
		{"p2 intermittent", "sync fails sometimes", PriorityP2},
		{"default", "general feedback about the product", PriorityP3},
		{"empty", "", PriorityP3},
		{"p0 beats p1", "urgent: security breach detected", PriorityP0},
		{"p1 beats p2", "slow and then it crashes", PriorityP1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Prioritize(tt.text))
		})
	}
}

func TestClassifyAndPrioritizeTogether(t *testing.T) {
	// A crash report marked urgent lands in bug/P1.
	text := NormalizeText(
		"App crashes when I click send",
		"It crashed twice today. This is urgent, I cannot work.",
	)
	assert.Equal(t, ClassBug, Classify(text))
	assert.Equal(t, PriorityP1, Prioritize(text))

	// A polite feature ask lands in feature_request/P3.
	text = NormalizeText(
		"Could you add dark mode?",
		"Would be great for late night reading.",
	)
	assert.Equal(t, ClassFeatureRequest, Classify(text))
	assert.Equal(t, PriorityP3, Prioritize(text))
}
