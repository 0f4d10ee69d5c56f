package executor_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/n9te9/federation-gateway/federation/executor"
	"github.com/n9te9/federation-gateway/federation/plan"
)

func TestExecuteSelectionSet_PlainFields(t *testing.T) {
	source := map[string]interface{}{"__typename": "User", "id": "1", "name": "Ada"}
	selections := plan.SelectionSet{
		plan.Field("__typename", nil),
		plan.Field("id", nil),
	}

	got := executor.ExecuteSelectionSet(nil, source, selections, nil)
	want := map[string]interface{}{"__typename": "User", "id": "1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("representation mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteSelectionSet_MissingFieldIsNotViable(t *testing.T) {
	source := map[string]interface{}{"__typename": "User"}
	selections := plan.SelectionSet{
		plan.Field("__typename", nil),
		plan.Field("id", nil),
	}

	got := executor.ExecuteSelectionSet(nil, source, selections, nil)
	if got != nil {
		t.Fatalf("expected nil when a required field is missing, got %v", got)
	}
}

func TestExecuteSelectionSet_NoTypenameIsNotViable(t *testing.T) {
	source := map[string]interface{}{"id": "1"}
	selections := plan.SelectionSet{plan.Field("id", nil)}

	got := executor.ExecuteSelectionSet(nil, source, selections, nil)
	if got != nil {
		t.Fatalf("expected nil when __typename is absent, got %v", got)
	}
}

func TestExecuteSelectionSet_InputRewriteSetsLiteralValue(t *testing.T) {
	source := map[string]interface{}{"__typename": "User", "id": "1", "locale": "fr-FR"}
	selections := plan.SelectionSet{
		plan.Field("__typename", nil),
		plan.Field("id", nil),
		plan.Field("locale", nil),
	}
	rewrites := []plan.InputRewrite{
		{Path: []string{"locale"}, SetValueTo: "en-US"},
	}

	got := executor.ExecuteSelectionSet(nil, source, selections, rewrites)
	want := map[string]interface{}{"__typename": "User", "id": "1", "locale": "en-US"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("representation mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteSelectionSet_NestedSubSelection(t *testing.T) {
	source := map[string]interface{}{
		"__typename": "Order",
		"id":         "o1",
		"customer":   map[string]interface{}{"id": "c1"},
	}
	selections := plan.SelectionSet{
		plan.Field("__typename", nil),
		plan.Field("id", nil),
		plan.Field("customer", plan.SelectionSet{plan.Field("id", nil)}),
	}

	got := executor.ExecuteSelectionSet(nil, source, selections, nil)
	want := map[string]interface{}{
		"__typename": "Order",
		"id":         "o1",
		"customer":   map[string]interface{}{"id": "c1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("representation mismatch (-want +got):\n%s", diff)
	}
}
