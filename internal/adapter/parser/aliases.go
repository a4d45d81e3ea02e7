package parser

import "strings"

// AliasSet resolves speaker-name variants to one canonical identity.
// Resolution is configured once at construction, never inferred at
// runtime, so a transcript using an unlisted nickname surfaces as its
// own speaker instead of being silently misattributed.
type AliasSet struct {
	canonical map[string]string // lowercase variant -> canonical identity
}

// NewAliasSet builds an AliasSet from a canonical-identity-to-variants
// mapping. Each canonical name also resolves to itself.
func NewAliasSet(aliases map[string][]string) *AliasSet {
	canonical := make(map[string]string)
	for name, variants := range aliases {
		canonical[normalizeName(name)] = name
		for _, v := range variants {
			canonical[normalizeName(v)] = name
		}
	}
	return &AliasSet{canonical: canonical}
}

// Canonical returns the canonical identity for a speaker name. Unknown
// names resolve to their trimmed form unchanged.
func (a *AliasSet) Canonical(name string) string {
	trimmed := strings.TrimSpace(name)
	if c, ok := a.canonical[normalizeName(trimmed)]; ok {
		return c
	}
	return trimmed
}

// Is reports whether the speaker name resolves to the given canonical
// identity.
func (a *AliasSet) Is(name, canonical string) bool {
	return a.Canonical(name) == canonical
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
