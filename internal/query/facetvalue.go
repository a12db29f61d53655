package query

import "strings"

// luceneSpecials are the characters that must be backslash-escaped before a
// facet value is embedded in a Lucene/Solr query term.
const luceneSpecials = `+-&|!(){}[]^~:/`

// EscapeLucene backslash-escapes every Lucene special character in s.
func EscapeLucene(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(luceneSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Term is one parsed facet value: a literal to match, with Negate set when
// the value itself carried a negation marker.
type Term struct {
	Value  string
	Negate bool
}

// negationPrefixes are checked case-insensitively, longest first so "not "
// doesn't shadow "-" incorrectly when both could apply.
var negationPrefixes = []string{"not ", "!", "-"}

// ParseFacetValue strips a leading `!`, `-`, or case-insensitive `"not "`
// prefix from one facet value, per spec §4.1 "Facet value syntax". The
// `_not_` key-suffix negation is handled separately by NormalizeKey; a term
// can carry both forms of negation, in which case they cancel (double
// negative == positive), matching boolean semantics.
func ParseFacetValue(raw string) Term {
	lower := strings.ToLower(raw)
	for _, prefix := range negationPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return Term{Value: raw[len(prefix):], Negate: true}
		}
	}
	return Term{Value: raw, Negate: false}
}

// ParseFacetValues parses every raw value for one facet key and splits them
// into positive and negative term sets; both sets are OR-joined within the
// key when the query is assembled.
func ParseFacetValues(raws []string, keyNegated bool) (positive, negative []string) {
	for _, raw := range raws {
		term := ParseFacetValue(raw)
		negate := term.Negate != keyNegated // keyNegated flips every term
		if negate {
			negative = append(negative, EscapeLucene(term.Value))
		} else {
			positive = append(positive, EscapeLucene(term.Value))
		}
	}
	return positive, negative
}
