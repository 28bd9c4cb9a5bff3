package reformat

import (
	"sort"
	"strings"

	"sdlkit/internal/ast"
)

// Canonical field attribute order. Native type attributes (dotted names)
// sort between the mapping attributes and ignore; anything unrecognized
// keeps source order at the end. Sorting attributes into a fixed order is
// what makes repeated formatting a fixed point.
var fieldAttrOrder = map[string]int{
	"id":        1,
	"unique":    2,
	"default":   3,
	"updatedAt": 4,
	"relation":  5,
	"map":       6,
	"ignore":    8,
}

func attrSortKey(name string) int {
	if strings.Contains(name, ".") {
		return 7
	}
	if k, ok := fieldAttrOrder[name]; ok {
		return k
	}
	return 9
}

// renderAttributes renders an attribute list in canonical order, joined by
// single spaces.
func renderAttributes(attrs []ast.Attribute, prefix string) string {
	if len(attrs) == 0 {
		return ""
	}
	sorted := make([]*ast.Attribute, len(attrs))
	for i := range attrs {
		sorted[i] = &attrs[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return attrSortKey(sorted[i].Name.Name) < attrSortKey(sorted[j].Name.Name)
	})
	parts := make([]string, len(sorted))
	for i, a := range sorted {
		parts[i] = renderAttribute(a, prefix)
	}
	return strings.Join(parts, " ")
}

// renderAttribute renders one attribute. Attributes without arguments drop
// the parentheses.
func renderAttribute(a *ast.Attribute, prefix string) string {
	if len(a.Arguments) == 0 {
		return prefix + a.Name.Name
	}
	parts := make([]string, len(a.Arguments))
	for i := range a.Arguments {
		arg := &a.Arguments[i]
		if arg.Name != nil {
			parts[i] = arg.Name.Name + ": " + arg.Value.String()
		} else {
			parts[i] = arg.Value.String()
		}
	}
	return prefix + a.Name.Name + "(" + strings.Join(parts, ", ") + ")"
}
