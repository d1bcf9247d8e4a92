package events

import "strings"

// categoryRules maps category names to keyword sets, in the order
// categories are assigned. Matching is plain substring over the lowercased
// text; callers rely on these exact semantics, including the occasional
// over-match inside longer words.
var categoryRules = []struct {
	name     string
	keywords []string
}{
	{"political", []string{"president", "election", "treaty", "constitution", "parliament", "government", "republic", "independence", "colony"}},
	{"military", []string{"war", "battle", "army", "siege", "invasion", "military", "troops", "naval", "surrender"}},
	{"scientific", []string{"discover", "invent", "patent", "scientist", "theory", "experiment", "laboratory", "research"}},
	{"cultural", []string{"art", "music", "film", "book", "theater", "museum", "festival", "olympic"}},
	{"exploration", []string{"explore", "expedition", "voyage", "discover", "landing", "sail"}},
	{"economic", []string{"trade", "company", "bank", "stock", "market", "industry"}},
	{"religious", []string{"church", "pope", "cathedral", "religion", "monastery", "crusade"}},
	{"natural_disaster", []string{"earthquake", "flood", "hurricane", "volcano", "tsunami", "famine"}},
}

// InferCategories assigns category tags by keyword matching. Multiple
// categories may apply; "historical" is the fallback when none do.
func InferCategories(text string) []string {
	lower := strings.ToLower(text)

	var categories []string
	for _, rule := range categoryRules {
		if containsAny(lower, rule.keywords...) {
			categories = append(categories, rule.name)
		}
	}

	if len(categories) == 0 {
		return []string{"historical"}
	}
	return categories
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
