package executor_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/n9te9/federation-gateway/federation/executor"
	"github.com/n9te9/federation-gateway/federation/plan"
)

func TestCursor_MoveField(t *testing.T) {
	root := map[string]interface{}{
		"me": map[string]interface{}{"id": "1", "name": "Ada"},
	}
	cur := executor.RootCursor(root)

	moved, ok := executor.Move(cur, plan.Path{"me"})
	if !ok {
		t.Fatal("expected Move to succeed")
	}
	want := map[string]interface{}{"id": "1", "name": "Ada"}
	if diff := cmp.Diff(want, moved.View()); diff != "" {
		t.Errorf("View mismatch (-want +got):\n%s", diff)
	}
}

func TestCursor_MoveThroughFlatten(t *testing.T) {
	root := map[string]interface{}{
		"reviews": []interface{}{
			map[string]interface{}{"product": map[string]interface{}{"id": "p1"}},
			map[string]interface{}{"product": map[string]interface{}{"id": "p2"}},
		},
	}
	cur := executor.RootCursor(root)

	moved, ok := executor.Move(cur, plan.Path{"reviews", plan.AtSymbol, "product"})
	if !ok {
		t.Fatal("expected Move to succeed")
	}

	want := []interface{}{
		map[string]interface{}{"id": "p1"},
		map[string]interface{}{"id": "p2"},
	}
	if diff := cmp.Diff(want, moved.View()); diff != "" {
		t.Errorf("View mismatch (-want +got):\n%s", diff)
	}

	wantPaths := []plan.ResponsePath{
		{plan.FieldElem("reviews"), plan.IndexElem(0), plan.FieldElem("product")},
		{plan.FieldElem("reviews"), plan.IndexElem(1), plan.FieldElem("product")},
	}
	if diff := cmp.Diff(wantPaths, moved.ElementPaths()); diff != "" {
		t.Errorf("ElementPaths mismatch (-want +got):\n%s", diff)
	}
}

func TestCursor_MoveDeadEndsOnNull(t *testing.T) {
	root := map[string]interface{}{"me": nil}
	cur := executor.RootCursor(root)

	_, ok := executor.Move(cur, plan.Path{"me", "name"})
	if ok {
		t.Fatal("expected Move through a null field to fail")
	}
}

func TestCursor_ElementPathsOnPlainArray(t *testing.T) {
	root := map[string]interface{}{
		"users": []interface{}{
			map[string]interface{}{"id": "1"},
			map[string]interface{}{"id": "2"},
		},
	}
	cur := executor.RootCursor(root)

	moved, ok := executor.Move(cur, plan.Path{"users"})
	if !ok {
		t.Fatal("expected Move to succeed")
	}

	wantPaths := []plan.ResponsePath{
		{plan.FieldElem("users"), plan.IndexElem(0)},
		{plan.FieldElem("users"), plan.IndexElem(1)},
	}
	if diff := cmp.Diff(wantPaths, moved.ElementPaths()); diff != "" {
		t.Errorf("ElementPaths mismatch (-want +got):\n%s", diff)
	}
}
