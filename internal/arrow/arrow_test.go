package arrow

import "testing"

func TestKeyMapping(t *testing.T) {
	tests := []struct {
		arrow Arrow
		key   string
	}{
		{Up, "up"},
		{Down, "down"},
		{Left, "left"},
		{Right, "right"},
	}

	seen := make(map[string]bool)
	for _, tt := range tests {
		if got := tt.arrow.Key(); got != tt.key {
			t.Errorf("%v.Key() = %q, want %q", tt.arrow, got, tt.key)
		}
		if seen[tt.key] {
			t.Errorf("key %q mapped twice", tt.key)
		}
		seen[tt.key] = true
	}
}

func TestAllOrder(t *testing.T) {
	all := All()
	if len(all) != Count {
		t.Fatalf("expected %d arrows, got %d", Count, len(all))
	}
	for i, a := range all {
		if int(a) != i {
			t.Errorf("arrow at index %d has ordinal %d", i, int(a))
		}
	}
}

func TestParse(t *testing.T) {
	for _, name := range []string{"up", "Up", " UP "} {
		a, err := Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", name, err)
		}
		if a != Up {
			t.Errorf("Parse(%q) = %v, want Up", name, a)
		}
	}

	if _, err := Parse("diagonal"); err == nil {
		t.Error("expected error for unknown arrow")
	}
}

func TestJoin(t *testing.T) {
	if got := Join([]Arrow{Left, Right, Up}); got != "Left,Right,Up" {
		t.Errorf("Join = %q", got)
	}
	if got := Join(nil); got != "" {
		t.Errorf("Join(nil) = %q, want empty", got)
	}
}
