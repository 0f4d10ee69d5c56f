package plan

// Selection mirrors spec §3's Plan Selection Set: a list where each element
// is a field (response-name plus optional sub-selections) or an inline
// fragment (type condition plus sub-selections). The meta-field __typename
// is always selectable and is represented as an ordinary Field.
type Selection struct {
	// Field form.
	ResponseName string
	FieldName    string // differs from ResponseName only when aliased
	Arguments    []Argument
	SubSelection SelectionSet

	// Inline fragment form (TypeCondition != "").
	TypeCondition string
}

// Argument is one field argument, carried on plan selections so the planner
// can regenerate operation text for a fetch without holding onto the
// original AST.
type Argument struct {
	Name  string
	Value Value
}

// EnumValue marks a Value.Literal as an unquoted GraphQL enum value rather
// than a string.
type EnumValue string

// ObjectField is one field of an object literal Value.
type ObjectField struct {
	Name  string
	Value Value
}

// Value is a GraphQL argument value: either a variable reference (Var set)
// or a literal. Literal may hold nil, bool, int64, float64, string,
// EnumValue, []Value, or []ObjectField.
type Value struct {
	Var     string
	Literal interface{}
}

// IsFragment reports whether this selection is a type-conditional fragment
// rather than a field.
func (s Selection) IsFragment() bool { return s.TypeCondition != "" }

// SelectionSet is an ordered list of selections.
type SelectionSet []Selection

// Field builds a plain field selection, defaulting ResponseName to name.
func Field(name string, sub SelectionSet) Selection {
	return Selection{ResponseName: name, FieldName: name, SubSelection: sub}
}

// AliasedField builds a field selection with a distinct response name.
func AliasedField(responseName, fieldName string, sub SelectionSet) Selection {
	return Selection{ResponseName: responseName, FieldName: fieldName, SubSelection: sub}
}

// InlineFragment builds a type-conditional inline fragment selection.
func InlineFragment(typeCondition string, sub SelectionSet) Selection {
	return Selection{TypeCondition: typeCondition, SubSelection: sub}
}
