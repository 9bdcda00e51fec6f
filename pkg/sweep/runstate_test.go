package sweep

import "testing"

func TestRunState_ValidOwner(t *testing.T) {
	state := newRunState(map[string]struct{}{
		"agentA": {},
		"agentB": {},
	})

	cases := []struct {
		owner string
		want  bool
	}{
		{"agentA", true},
		{"agentB", true},
		{"agentC", false},
		{"AgentA", false},  // case sensitive
		{"agentA ", false}, // no trimming
		{"", false},
	}
	for _, tc := range cases {
		if got := state.ValidOwner(tc.owner); got != tc.want {
			t.Errorf("ValidOwner(%q) = %v, want %v", tc.owner, got, tc.want)
		}
	}
}

func TestRunState_Touched(t *testing.T) {
	state := newRunState(nil)

	if state.Touched("cache_v1_images") {
		t.Error("fresh state reports table as touched")
	}

	state.MarkTouched("cache_v1_images")

	if !state.Touched("cache_v1_images") {
		t.Error("marked table not reported as touched")
	}
	if state.Touched("cache_v1_images_rel") {
		t.Error("unrelated table reported as touched")
	}

	// Fresh runs start from scratch.
	next := newRunState(nil)
	if next.Touched("cache_v1_images") {
		t.Error("touched set leaked into a new run")
	}
}
