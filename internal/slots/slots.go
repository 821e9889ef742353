package slots

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinPorts and MaxPorts bound terminal_ports on any splice location.
	MinPorts = 1
	MaxPorts = 8
	// DefaultPorts applies when the port count cannot be parsed at all.
	DefaultPorts = 2
)

// SlotKey names one photo position at a splice location: port_1..port_N
// or the fixed completion slot.
type SlotKey string

// CompletionKey is the fixed final slot every location requires.
const CompletionKey SlotKey = "splice_completion"

const portPrefix = "port_"

// PortKey returns the slot key for the nth terminal port (1-based).
func PortKey(n int) SlotKey {
	return SlotKey(fmt.Sprintf("%s%d", portPrefix, n))
}

// String implements fmt.Stringer.
func (k SlotKey) String() string {
	return string(k)
}

// IsPort reports whether the key names a terminal port slot.
func (k SlotKey) IsPort() bool {
	_, ok := k.PortNumber()
	return ok
}

// PortNumber returns the 1-based port index for port keys.
func (k SlotKey) PortNumber() (int, bool) {
	raw, found := strings.CutPrefix(string(k), portPrefix)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < MinPorts || n > MaxPorts {
		return 0, false
	}
	return n, true
}

// ParseSlotKey validates a raw slot key string.
func ParseSlotKey(value string) (SlotKey, error) {
	key := SlotKey(strings.TrimSpace(value))
	if key == CompletionKey {
		return key, nil
	}
	if key.IsPort() {
		return key, nil
	}
	return "", fmt.Errorf("invalid slot key %q", value)
}

// NormalizePorts clamps a port count to [MinPorts, MaxPorts]. The
// function is idempotent; only non-numeric input gets the default.
func NormalizePorts(ports int) int {
	if ports < MinPorts {
		return MinPorts
	}
	if ports > MaxPorts {
		return MaxPorts
	}
	return ports
}

// ParsePorts reads a raw port count, defaulting non-numeric input.
func ParsePorts(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPorts
	}
	return NormalizePorts(n)
}

// Required returns the canonical required slot sequence for a port
// count: port_1..port_N then splice_completion. The order is the
// display and completion-check order.
func Required(terminalPorts int) []SlotKey {
	ports := NormalizePorts(terminalPorts)
	keys := make([]SlotKey, 0, ports+1)
	for i := 1; i <= ports; i++ {
		keys = append(keys, PortKey(i))
	}
	return append(keys, CompletionKey)
}

// Set is a populated-slot lookup.
type Set map[SlotKey]bool

// NewSet builds a Set from the given keys.
func NewSet(keys ...SlotKey) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = true
	}
	return s
}

// Progress counts populated required slots against the required total.
func Progress(populated Set, terminalPorts int) (uploaded, required int) {
	req := Required(terminalPorts)
	for _, key := range req {
		if populated[key] {
			uploaded++
		}
	}
	return uploaded, len(req)
}

// Missing returns the required keys without a photo, in canonical order.
func Missing(populated Set, terminalPorts int) []SlotKey {
	var missing []SlotKey
	for _, key := range Required(terminalPorts) {
		if !populated[key] {
			missing = append(missing, key)
		}
	}
	return missing
}

// HasAllRequired reports whether every required slot is populated.
func HasAllRequired(populated Set, terminalPorts int) bool {
	return len(Missing(populated, terminalPorts)) == 0
}

// Extras returns populated keys outside the required set, e.g. leftover
// ports after the count was reduced. Extras never block completion.
func Extras(populated Set, terminalPorts int) []SlotKey {
	required := NewSet(Required(terminalPorts)...)
	var extras []SlotKey
	for n := 1; n <= MaxPorts; n++ {
		key := PortKey(n)
		if populated[key] && !required[key] {
			extras = append(extras, key)
		}
	}
	return extras
}
