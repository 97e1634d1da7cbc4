package normalization

import (
	"strings"
)

// NormalizeField produces the canonical comparison form of a free-form
// field: trimmed, internal whitespace runs collapsed to a single space,
// lowercased. Address identity and city lookups compare these values.
func NormalizeField(input string) string {
	collapsed := strings.Join(strings.Fields(input), " ")
	return strings.ToLower(collapsed)
}

// NormalizeFieldPtr normalizes an optional field. A nil input stays nil so
// that an absent value never collides with a present empty string.
func NormalizeFieldPtr(input *string) *string {
	if input == nil {
		return nil
	}
	normalized := NormalizeField(*input)
	return &normalized
}
