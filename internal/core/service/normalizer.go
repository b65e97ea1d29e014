package service

import (
	"strings"

	"github.com/xrash/smetrics"
)

// NameNormalizer fixes common typos in product names. It is a pure text
// transform: known misspellings map directly, everything else is matched
// against the dictionary by Jaro-Winkler similarity.
type NameNormalizer struct {
	typoFixes  map[string]string
	brands     map[string]string
	dictionary []string
	threshold  float64
}

type NormalizationResult struct {
	Original   string
	Normalized string
	Improved   bool
	Changes    []string
}

const similarityThreshold = 0.92

func NewNameNormalizer() *NameNormalizer {
	return &NameNormalizer{
		typoFixes: map[string]string{
			"mlko":    "mleko",
			"chlb":    "chleb",
			"maslo":   "masło",
			"jogrt":   "jogurt",
			"kielbsa": "kiełbasa",
			"marchw":  "marchew",
		},
		brands: map[string]string{
			"coca cola": "Coca-Cola",
			"pepsi":     "Pepsi",
			"sprite":    "Sprite",
			"danone":    "Danone",
		},
		dictionary: []string{
			"mleko", "chleb", "masło", "jogurt", "kiełbasa", "marchew",
			"ziemniaki", "pomidory", "banany", "jabłka", "ser", "jajka",
			"milk", "bread", "butter", "eggs", "cheese", "sugar", "coffee",
		},
		threshold: similarityThreshold,
	}
}

func (n *NameNormalizer) Normalize(name string) NormalizationResult {
	result := NormalizationResult{Original: name}
	if strings.TrimSpace(name) == "" {
		return result
	}

	normalized := cleanWhitespace(name)
	if normalized != name {
		result.Changes = append(result.Changes, "fixed spacing")
	}

	fixed := n.fixTypos(normalized)
	if fixed != normalized {
		result.Changes = append(result.Changes, "fixed typos")
		normalized = fixed
	}

	if brand, ok := n.brands[strings.ToLower(normalized)]; ok {
		normalized = brand
	} else {
		capitalized := capitalizeFirst(normalized)
		if capitalized != normalized {
			result.Changes = append(result.Changes, "fixed capitalization")
			normalized = capitalized
		}
	}

	result.Normalized = normalized
	result.Improved = len(result.Changes) > 0
	return result
}

func (n *NameNormalizer) fixTypos(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		lower := strings.ToLower(word)
		if fix, ok := n.typoFixes[lower]; ok {
			words[i] = fix
			continue
		}
		if match := n.closestMatch(lower); match != "" {
			words[i] = match
		}
	}
	return strings.Join(words, " ")
}

// closestMatch returns the dictionary word most similar to w, or "" when
// nothing clears the threshold. Exact dictionary words pass through.
func (n *NameNormalizer) closestMatch(w string) string {
	best := ""
	bestScore := n.threshold
	for _, candidate := range n.dictionary {
		if candidate == w {
			return ""
		}
		score := smetrics.JaroWinkler(w, candidate, 0.7, 4)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best
}

func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capitalizeFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
