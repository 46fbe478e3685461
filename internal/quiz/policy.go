package quiz

import "strings"

// Bin is the coarse length-based difficulty proxy. The dataset carries a
// single difficulty label for nearly all records, so question text length
// stands in as the difficulty signal.
type Bin string

const (
	BinEasy   Bin = "easy"
	BinMedium Bin = "medium"
	BinHard   Bin = "hard"
)

// BinForLength maps a question text length to its coarse bin:
// easy below 120 characters, medium 120 through 240, hard above 240.
func BinForLength(n int) Bin {
	switch {
	case n < 120:
		return BinEasy
	case n <= 240:
		return BinMedium
	default:
		return BinHard
	}
}

// LengthRange returns the inclusive character-length bounds for the bin.
// A zero bound means unbounded on that side.
func (b Bin) LengthRange() (min, max int) {
	switch b {
	case BinEasy:
		return 0, 119
	case BinMedium:
		return 120, 240
	case BinHard:
		return 241, 0
	}
	return 0, 0
}

// ParseBin recognizes a user-supplied bin label
func ParseBin(s string) (Bin, bool) {
	switch Bin(strings.ToLower(strings.TrimSpace(s))) {
	case BinEasy:
		return BinEasy, true
	case BinMedium:
		return BinMedium, true
	case BinHard:
		return BinHard, true
	}
	return "", false
}

// LevelForLength maps a question text length to the finer 1-5 level used
// for quiz starts. Lower bounds are inclusive; level 5 starts strictly
// above 300 characters.
func LevelForLength(n int) int {
	switch {
	case n < 80:
		return 1
	case n < 140:
		return 2
	case n < 220:
		return 3
	case n <= 300:
		return 4
	default:
		return 5
	}
}

// LevelRange returns the inclusive character-length bounds for a 1-5
// level. A zero bound means unbounded on that side; out-of-range levels
// yield no constraint.
func LevelRange(level int) (min, max int) {
	switch level {
	case 1:
		return 0, 79
	case 2:
		return 80, 139
	case 3:
		return 140, 219
	case 4:
		return 220, 300
	case 5:
		return 301, 0
	}
	return 0, 0
}

// subjectSynonyms maps common shorthand to the dataset's canonical labels
var subjectSynonyms = map[string]string{
	"maths":       "math",
	"mathematics": "math",
	"bio":         "biology",
	"chem":        "chemistry",
	"cs":          "cs/ai",
	"ai":          "cs/ai",
	"comp sci":    "cs/ai",
}

// typeSynonyms collapses multiple-choice phrasings onto the stored label
var typeSynonyms = map[string]string{
	"mcq":             "text",
	"mcqs":            "text",
	"multiple choice": "text",
	"multiple-choice": "text",
	"choice":          "text",
}

// NormalizeSubject maps free-text subject input onto one of the canonical
// values present in the store. Matching is forgiving: a synonym table is
// applied first, then case-insensitive substring matching in both
// directions. Returns "" when nothing matches, which callers treat as an
// unset filter.
func NormalizeSubject(input string, available []string) string {
	return normalize(input, available, subjectSynonyms)
}

// NormalizeQuestionType maps free-text question-type input onto one of the
// canonical values present in the store, with the same forgiving rules as
// NormalizeSubject.
func NormalizeQuestionType(input string, available []string) string {
	return normalize(input, available, typeSynonyms)
}

func normalize(input string, available []string, synonyms map[string]string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}
	if mapped, ok := synonyms[s]; ok {
		s = mapped
	}
	for _, canon := range available {
		c := strings.ToLower(canon)
		if s == c || strings.Contains(c, s) || strings.Contains(s, c) {
			return canon
		}
	}
	return ""
}
