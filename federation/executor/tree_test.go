package executor_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/n9te9/federation-gateway/federation/executor"
)

func TestMergeInto(t *testing.T) {
	tests := []struct {
		name   string
		target map[string]interface{}
		source map[string]interface{}
		want   map[string]interface{}
	}{
		{
			name:   "new key added",
			target: map[string]interface{}{"id": "1"},
			source: map[string]interface{}{"name": "Ada"},
			want:   map[string]interface{}{"id": "1", "name": "Ada"},
		},
		{
			name:   "scalar replaced, later wins",
			target: map[string]interface{}{"name": "old"},
			source: map[string]interface{}{"name": "new"},
			want:   map[string]interface{}{"name": "new"},
		},
		{
			name: "nested maps merge recursively",
			target: map[string]interface{}{
				"me": map[string]interface{}{"id": "1"},
			},
			source: map[string]interface{}{
				"me": map[string]interface{}{"name": "Ada"},
			},
			want: map[string]interface{}{
				"me": map[string]interface{}{"id": "1", "name": "Ada"},
			},
		},
		{
			name: "equal-length arrays combine element-wise",
			target: map[string]interface{}{
				"users": []interface{}{
					map[string]interface{}{"id": "1"},
					map[string]interface{}{"id": "2"},
				},
			},
			source: map[string]interface{}{
				"users": []interface{}{
					map[string]interface{}{"name": "Ada"},
					map[string]interface{}{"name": "Bea"},
				},
			},
			want: map[string]interface{}{
				"users": []interface{}{
					map[string]interface{}{"id": "1", "name": "Ada"},
					map[string]interface{}{"id": "2", "name": "Bea"},
				},
			},
		},
		{
			name: "mismatched-length arrays are replaced wholesale",
			target: map[string]interface{}{
				"users": []interface{}{map[string]interface{}{"id": "1"}},
			},
			source: map[string]interface{}{
				"users": []interface{}{
					map[string]interface{}{"id": "1"},
					map[string]interface{}{"id": "2"},
				},
			},
			want: map[string]interface{}{
				"users": []interface{}{
					map[string]interface{}{"id": "1"},
					map[string]interface{}{"id": "2"},
				},
			},
		},
		{
			name:   "null never overwrites an existing non-null value",
			target: map[string]interface{}{"name": "Ada"},
			source: map[string]interface{}{"name": nil},
			want:   map[string]interface{}{"name": "Ada"},
		},
		{
			name:   "null is kept when nothing existed before",
			target: map[string]interface{}{},
			source: map[string]interface{}{"name": nil},
			want:   map[string]interface{}{"name": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor.MergeInto(tt.target, tt.source)
			if diff := cmp.Diff(tt.want, tt.target); diff != "" {
				t.Errorf("MergeInto result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
