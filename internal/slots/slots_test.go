package slots

import "testing"

func TestRequiredLengthAndOrdering(t *testing.T) {
	for ports := MinPorts; ports <= MaxPorts; ports++ {
		keys := Required(ports)
		if len(keys) != ports+1 {
			t.Fatalf("ports=%d: expected %d required slots, got %d", ports, ports+1, len(keys))
		}
		if keys[len(keys)-1] != CompletionKey {
			t.Fatalf("ports=%d: last slot must be %s, got %s", ports, CompletionKey, keys[len(keys)-1])
		}
		for i := 0; i < ports; i++ {
			if keys[i] != PortKey(i+1) {
				t.Fatalf("ports=%d: slot %d should be %s, got %s", ports, i, PortKey(i+1), keys[i])
			}
		}
	}
}

func TestNormalizePortsClamps(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-3, MinPorts},
		{0, MinPorts},
		{1, 1},
		{4, 4},
		{8, 8},
		{9, 8},
		{100, 8},
	}
	for _, tc := range cases {
		if got := NormalizePorts(tc.in); got != tc.want {
			t.Fatalf("NormalizePorts(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}

	// idempotence over the full clamp range
	for in := -2; in <= 12; in++ {
		once := NormalizePorts(in)
		if twice := NormalizePorts(once); twice != once {
			t.Fatalf("NormalizePorts not idempotent for %d: %d then %d", in, once, twice)
		}
	}
}

func TestParsePortsNonNumericDefaults(t *testing.T) {
	if got := ParsePorts("not-a-number"); got != DefaultPorts {
		t.Fatalf("expected default %d, got %d", DefaultPorts, got)
	}
	if got := ParsePorts(""); got != DefaultPorts {
		t.Fatalf("expected default %d for empty input, got %d", DefaultPorts, got)
	}
	if got := ParsePorts(" 6 "); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
	if got := ParsePorts("42"); got != MaxPorts {
		t.Fatalf("expected clamp to %d, got %d", MaxPorts, got)
	}
}

func TestParseSlotKey(t *testing.T) {
	valid := []string{"port_1", "port_8", "splice_completion"}
	for _, raw := range valid {
		if _, err := ParseSlotKey(raw); err != nil {
			t.Fatalf("expected %q to parse: %v", raw, err)
		}
	}

	invalid := []string{"port_0", "port_9", "port_x", "completion", "", "PORT_1"}
	for _, raw := range invalid {
		if _, err := ParseSlotKey(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestProgressAndMissing(t *testing.T) {
	populated := NewSet(PortKey(1), PortKey(2), CompletionKey)

	uploaded, required := Progress(populated, 4)
	if uploaded != 3 || required != 5 {
		t.Fatalf("expected 3/5, got %d/%d", uploaded, required)
	}

	missing := Missing(populated, 4)
	if len(missing) != 2 || missing[0] != PortKey(3) || missing[1] != PortKey(4) {
		t.Fatalf("unexpected missing set %v", missing)
	}

	if HasAllRequired(populated, 4) {
		t.Fatal("ports=4 should not be satisfied by 3 slots")
	}
	if !HasAllRequired(populated, 2) {
		t.Fatal("ports=2 should be satisfied")
	}
}

func TestExtrasRetainedAfterPortReduction(t *testing.T) {
	// photos taken at ports 1..4, then the count was reduced to 2
	populated := NewSet(PortKey(1), PortKey(2), PortKey(3), PortKey(4), CompletionKey)

	extras := Extras(populated, 2)
	if len(extras) != 2 || extras[0] != PortKey(3) || extras[1] != PortKey(4) {
		t.Fatalf("unexpected extras %v", extras)
	}

	// extras never block completion
	if !HasAllRequired(populated, 2) {
		t.Fatal("reduced port count should still be complete")
	}
}
