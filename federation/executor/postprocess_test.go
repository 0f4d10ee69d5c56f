package executor_test

import (
	"testing"

	"github.com/n9te9/federation-gateway/federation/executor"
	"github.com/n9te9/federation-gateway/federation/plan"
)

func TestPostProcessor_Shape_FragmentTypeConditionMismatch(t *testing.T) {
	tree := map[string]interface{}{
		"__typename": "User",
		"id":         "1",
		"name":       "Ada",
	}

	selections := plan.SelectionSet{
		plan.Field("id", nil),
		plan.InlineFragment("User", plan.SelectionSet{plan.Field("name", nil)}),
		plan.InlineFragment("Product", plan.SelectionSet{plan.Field("price", nil)}),
	}

	pp := &executor.PostProcessor{}
	data, errs := pp.Shape(tree, selections)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if _, ok := data["price"]; ok {
		t.Fatalf("fields from non-matching fragment leaked into result: %v", data)
	}
	if data["name"] != "Ada" {
		t.Errorf("name = %v, want Ada (from the matching fragment)", data["name"])
	}
	if data["id"] != "1" {
		t.Errorf("id = %v, want 1", data["id"])
	}
}
