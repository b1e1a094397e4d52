package candidate

import "testing"

func TestLoadCIDRExpansionDedup(t *testing.T) {
	// S1: two overlapping CIDRs over the same /24 dedup to exactly 256 addresses.
	src, err := LoadString("192.168.1.1/24\n192.168.1.1/28", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := src.Len(); got != 256 {
		t.Fatalf("Len() = %d, want 256", got)
	}
}

func TestLoadSingleSlash28(t *testing.T) {
	src, err := LoadString("192.168.1.1/28", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := src.Len(); got != 16 {
		t.Fatalf("Len() = %d, want 16", got)
	}
}

func TestSubsampleBound(t *testing.T) {
	// S2: random_number=50 over a 256-address union yields exactly 50 distinct
	// addresses, all members of the union.
	src, err := LoadString("192.168.1.1/24\n192.168.1.1/28", 50)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	addrs := src.All()
	if len(addrs) != 50 {
		t.Fatalf("Len() = %d, want 50", len(addrs))
	}
	seen := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		if seen[a.String()] {
			t.Fatalf("duplicate address in subsample: %s", a)
		}
		seen[a.String()] = true
	}
}

func TestSubsampleBoundExceedsSet(t *testing.T) {
	// invariant 2: output size == min(k, |deduplicated set|).
	src, err := LoadString("10.0.0.1/30", 9999)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := src.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}
}

func TestSkipsUnparseableLines(t *testing.T) {
	src, err := LoadString("not-an-ip\n\n# comment\n10.0.0.1", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := src.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}
