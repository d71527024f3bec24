package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMerge_LaterScalarsWin(t *testing.T) {
	got := Merge(
		Fragment{"type": "integer"},
		Fragment{"minimum": 0, "type": "number"},
	)
	want := Fragment{"minimum": 0, "type": "number"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_NestedObjectsAndArrays(t *testing.T) {
	got := Merge(
		Fragment{"enum": []any{"a", "b"}, "not": Fragment{"pattern": "x"}},
		nil,
		Fragment{"enum": []string{"c"}, "not": map[string]any{"type": "string"}},
	)
	want := Fragment{
		"enum": []any{"c", "b"},
		"not":  Fragment{"pattern": "x", "type": "string"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_ArrayOfObjectsMergesByIndex(t *testing.T) {
	got := Merge(
		Fragment{"oneOf": []any{Fragment{"format": "date"}, Fragment{"format": "date-time"}}},
		Fragment{"oneOf": []any{Fragment{"type": "string"}}},
	)
	want := Fragment{"oneOf": []any{
		Fragment{"format": "date", "type": "string"},
		Fragment{"format": "date-time"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_DoesNotMutateSources(t *testing.T) {
	first := Fragment{"items": Fragment{"type": "string"}, "enum": []any{"a"}}
	second := Fragment{"items": Fragment{"minLength": 1}, "enum": []any{"b", "c"}}

	out := Merge(first, second)
	out["items"].(Fragment)["maxLength"] = 4

	if diff := cmp.Diff(Fragment{"items": Fragment{"type": "string"}, "enum": []any{"a"}}, first); diff != "" {
		t.Fatalf("first source mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Fragment{"items": Fragment{"minLength": 1}, "enum": []any{"b", "c"}}, second); diff != "" {
		t.Fatalf("second source mutated (-want +got):\n%s", diff)
	}
}

func TestMerge_DropsNilValues(t *testing.T) {
	got := Merge(
		Fragment{"minimum": 5, "type": "number"},
		Fragment{"minimum": nil, "type": "number"},
		Fragment{"items": Fragment{"maxLength": nil, "type": "string"}, "pattern": nil},
	)
	want := Fragment{
		"minimum": 5,
		"type":    "number",
		"items":   Fragment{"type": "string"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty fragment, got %#v", got)
	}
}

func TestFragmentClone_NormalisesNestedValues(t *testing.T) {
	src := Fragment{
		"properties": map[string]any{"name": map[string]any{"type": "string"}},
		"enum":       []int{1, 2},
		"raw":        []byte("x"),
	}
	clone := src.Clone()

	props, ok := clone.Object("properties")
	if !ok {
		t.Fatalf("expected properties fragment, got %#v", clone["properties"])
	}
	if _, ok := props["name"].(Fragment); !ok {
		t.Fatalf("expected nested fragment, got %T", props["name"])
	}
	if diff := cmp.Diff([]any{1, 2}, clone["enum"]); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
	if _, ok := clone["raw"].([]byte); !ok {
		t.Fatalf("expected byte slices to stay untouched")
	}
	if got := (Fragment{}).Keys(); len(got) != 0 {
		t.Fatalf("expected no keys, got %v", got)
	}
}

func TestArrayOf(t *testing.T) {
	if diff := cmp.Diff(Fragment{"type": "array"}, ArrayOf(nil)); diff != "" {
		t.Fatalf("nil items mismatch (-want +got):\n%s", diff)
	}
	want := Fragment{"items": Fragment{"type": "string"}, "type": "array"}
	if diff := cmp.Diff(want, ArrayOf(OfType(TypeString))); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}
