package main

import (
	"reflect"
	"testing"
)

const nodeID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func TestRewriteDirectNodeLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"storyline"},
			want: []string{"storyline"},
		},
		{
			name: "direct node id first token",
			in:   []string{"storyline", nodeID},
			want: []string{"storyline", "nodes", "show", nodeID},
		},
		{
			name: "direct node id after value flag",
			in:   []string{"storyline", "--dir", "./tmp-story", nodeID},
			want: []string{"storyline", "--dir", "./tmp-story", "nodes", "show", nodeID},
		},
		{
			name: "direct node id after equals flag",
			in:   []string{"storyline", "--format=edn", nodeID},
			want: []string{"storyline", "--format=edn", "nodes", "show", nodeID},
		},
		{
			name: "direct node id after bool flag",
			in:   []string{"storyline", "--pretty", nodeID},
			want: []string{"storyline", "--pretty", "nodes", "show", nodeID},
		},
		{
			name: "direct node id after double dash",
			in:   []string{"storyline", "--dir", "./tmp-story", "--", nodeID},
			want: []string{"storyline", "--dir", "./tmp-story", "--", "nodes", "show", nodeID},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"storyline", "nodes", "show", nodeID},
			want: []string{"storyline", "nodes", "show", nodeID},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"storyline", "wat"},
			want: []string{"storyline", "wat"},
		},
		{
			name: "dir value that looks like an id is skipped",
			in:   []string{"storyline", "--dir", nodeID, "tree"},
			want: []string{"storyline", "--dir", nodeID, "tree"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := rewriteDirectNodeLookupArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectNodeLookupArgs(%v) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}
