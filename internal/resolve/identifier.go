package resolve

// Identifier is one searchable fact about a record (an id, a name, an email)
// with a provenance tag. A member typically carries 5-15 of these, harvested
// from nested user/profile fields.
type Identifier struct {
	Value      string   `json:"value"`
	Source     string   `json:"source"`
	Normalized string   `json:"normalized"`
	Tokens     []string `json:"tokens,omitempty"`
}

// NewIdentifier builds an Identifier, precomputing its normalized form and
// token set. Empty values yield a zero Identifier.
func NewIdentifier(value, source string) Identifier {
	normalized := Normalize(value)
	if normalized == "" {
		return Identifier{}
	}
	return Identifier{
		Value:      value,
		Source:     source,
		Normalized: normalized,
		Tokens:     Tokenize(value),
	}
}

// DedupeIdentifiers removes duplicates by (source, normalized value) and
// drops empties, preserving first-seen order.
func DedupeIdentifiers(ids []Identifier) []Identifier {
	type key struct{ source, normalized string }
	seen := make(map[key]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id.Normalized == "" {
			continue
		}
		k := key{id.Source, id.Normalized}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, id)
	}
	return out
}
