package filter

import "strings"

// Contains matches documents whose Field holds Value as a substring.
// The comparison is case preserving.
type Contains struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Expression is a logical OR of Contains conditions.
type Expression struct {
	Any []Contains `json:"any"`
}

// Or builds an expression from the given conditions, keeping their order.
func Or(conditions ...Contains) Expression {
	return Expression{Any: conditions}
}

// Fields returns the fields referenced by the expression in condition order.
func (e Expression) Fields() []string {
	fields := make([]string, 0, len(e.Any))
	for _, condition := range e.Any {
		fields = append(fields, condition.Field)
	}
	return fields
}

// Matches reports whether any condition holds for the document.
// An expression without conditions matches nothing.
func (e Expression) Matches(doc map[string]any) bool {
	for _, condition := range e.Any {
		if condition.matches(doc) {
			return true
		}
	}
	return false
}

func (c Contains) matches(doc map[string]any) bool {
	switch value := doc[c.Field].(type) {
	case string:
		return strings.Contains(value, c.Value)
	case []string:
		for _, item := range value {
			if strings.Contains(item, c.Value) {
				return true
			}
		}
	case []any:
		for _, item := range value {
			if s, ok := item.(string); ok && strings.Contains(s, c.Value) {
				return true
			}
		}
	}
	return false
}
