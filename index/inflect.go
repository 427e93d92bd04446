package index

import "strings"

// pluralize converts an attribute name to its plural form for use in index
// table names.
func pluralize(word string) string {
	switch {
	case word == "":
		return word
	case strings.HasSuffix(word, "y") && !hasVowelBefore(word, "y"):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "z"), strings.HasSuffix(word, "ch"),
		strings.HasSuffix(word, "sh"):
		return word + "es"
	default:
		return word + "s"
	}
}

// singularize converts a plural table root to its singular form. Roots that
// are already singular come back unchanged.
func singularize(word string) string {
	switch {
	case strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "xes"), strings.HasSuffix(word, "zes"),
		strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "sses"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	default:
		return word
	}
}

func hasVowelBefore(word, suffix string) bool {
	rest := strings.TrimSuffix(word, suffix)
	if rest == "" {
		return false
	}
	return strings.ContainsRune("aeiou", rune(rest[len(rest)-1]))
}
