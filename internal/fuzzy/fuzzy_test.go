//nolint:testpackage // using package name 'fuzzy' to access unexported fields for testing
package fuzzy

import (
	"testing"
)

func TestMatcher_FindBest(t *testing.T) {
	matcher := NewMatcher(2)

	tests := []struct {
		name       string
		input      string
		candidates []string
		expected   string
	}{
		{
			name:       "exact match excluded",
			input:      "help",
			candidates: []string{"help", "version", "verbose"},
			expected:   "",
		},
		{
			name:       "simple typo",
			input:      "hep",
			candidates: []string{"help", "version", "verbose"},
			expected:   "help",
		},
		{
			name:       "transposed letters",
			input:      "vrebose",
			candidates: []string{"version", "verbose"},
			expected:   "verbose",
		},
		{
			name:       "negated input",
			input:      "no-verbos",
			candidates: []string{"version", "verbose"},
			expected:   "verbose",
		},
		{
			name:       "negative candidate",
			input:      "pagr",
			candidates: []string{"editor", "no-pager"},
			expected:   "no-pager",
		},
		{
			name:       "no good match",
			input:      "xyz",
			candidates: []string{"help", "version", "verbose"},
			expected:   "",
		},
		{
			name:       "too short",
			input:      "x",
			candidates: []string{"help", "version"},
			expected:   "",
		},
		{
			name:       "case insensitive",
			input:      "HEP",
			candidates: []string{"help", "version"},
			expected:   "help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := matcher.FindBest(tt.input, tt.candidates)
			if result != tt.expected {
				t.Errorf("FindBest(%q, %v) = %q, want %q", tt.input, tt.candidates, result, tt.expected)
			}
		})
	}
}

func TestMatcher_FindMatchesSorted(t *testing.T) {
	matcher := NewMatcher(2)
	matches := matcher.FindMatches("sitenme", []string{"siteurl", "sitename", "username"})

	if len(matches) == 0 {
		t.Fatalf("Expected at least one match")
	}
	if matches[0].Value != "sitename" {
		t.Errorf("Expected sitename first, got %q", matches[0].Value)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i-1].Score < matches[i].Score {
			t.Errorf("Matches not sorted by score: %f < %f", matches[i-1].Score, matches[i].Score)
		}
	}
	for _, match := range matches {
		if match.Distance > matcher.maxDistance {
			t.Errorf("Match distance %d exceeds max %d", match.Distance, matcher.maxDistance)
		}
		if match.Score < 0 || match.Score > 1 {
			t.Errorf("Score %f outside valid range [0.0, 1.0]", match.Score)
		}
	}
}

func TestMatcher_Distance(t *testing.T) {
	matcher := NewMatcher(10)

	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "ab", 1},
		{"help", "hep", 1},
		{"ab", "ba", 1},
		{"verbose", "vrebose", 1},
		{"kitten", "sitting", 3},
		{"länge", "lange", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := matcher.distance([]rune(tt.a), []rune(tt.b))
			if result != tt.expected {
				t.Errorf("distance(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestMatcher_LengthCutoff(t *testing.T) {
	matcher := NewMatcher(2)

	result := matcher.distance([]rune("short"), []rune("verylongstring"))
	if result != matcher.maxDistance+1 {
		t.Errorf("Expected %d for very different lengths, got %d", matcher.maxDistance+1, result)
	}
}

func TestFindSuggestions(t *testing.T) {
	names := []string{"cat", "cut", "cot", "count"}

	suggestions := FindSuggestions("cnt", names, 2, 2)
	if len(suggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %v", suggestions)
	}

	if got := FindBestOption("lenght", []string{"length", "username"}, 2); got != "length" {
		t.Errorf("FindBestOption(lenght) = %q, want length", got)
	}
}
