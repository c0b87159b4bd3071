package selection

import (
	"fmt"
	"math"
	"strings"

	"atlaswifi/internal/wifi"
)

// Capacity is the number of MAC addresses that fit in one uplink payload
const Capacity = 2

// None marks an unused slot
const None = -1

// rssiFloor sits below every int16 RSSI value
const rssiFloor = math.MinInt16 - 1

// Sorting selects how valid access points are ranked
type Sorting uint8

const (
	SortingNone Sorting = iota // keep list order
	SortingRSSI                // strongest signal first
)

// Valid reports whether s is a recognized sorting mode
func (s Sorting) Valid() bool {
	return s == SortingNone || s == SortingRSSI
}

func (s Sorting) String() string {
	switch s {
	case SortingNone:
		return "none"
	case SortingRSSI:
		return "rssi"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseSorting converts a sorting name into a Sorting
func ParseSorting(name string) (Sorting, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return SortingNone, nil
	case "rssi":
		return SortingRSSI, nil
	default:
		return 0, fmt.Errorf("unknown sorting %q", name)
	}
}

// Slots holds list indices of the selected access points in payload order
type Slots [Capacity]int

// Reset marks every slot unused
func (s *Slots) Reset() {
	for i := range s {
		s[i] = None
	}
}

// Contains reports whether index is already selected
func (s *Slots) Contains(index int) bool {
	for _, idx := range s {
		if idx == index {
			return true
		}
	}
	return false
}

// Filled returns the number of used slots
func (s *Slots) Filled() int {
	n := 0
	for _, idx := range s {
		if idx != None {
			n++
		}
	}
	return n
}

// Select picks up to Capacity valid access points from list. Unknown sorting
// modes select nothing.
func Select(list wifi.List, sorting Sorting) Slots {
	var slots Slots
	slots.Reset()

	switch sorting {
	case SortingNone:
		selectInOrder(list, &slots)
	case SortingRSSI:
		selectByRSSI(list, &slots)
	}

	return slots
}

// selectInOrder takes the first valid access points in list order
func selectInOrder(list wifi.List, slots *Slots) {
	count := 0
	for i, ap := range list {
		if count >= Capacity {
			break
		}
		if isValid(ap) {
			slots[count] = i
			count++
		}
	}
}

// selectByRSSI runs one max-extraction scan per slot. The strict comparison
// keeps the lowest index among equal RSSI values.
func selectByRSSI(list wifi.List, slots *Slots) {
	for slot := 0; slot < Capacity; slot++ {
		best := None
		bestRSSI := rssiFloor

		for i, ap := range list {
			if !isValid(ap) {
				continue
			}
			if int(ap.RSSI) > bestRSSI && !slots.Contains(i) {
				best = i
				bestRSSI = int(ap.RSSI)
			}
		}

		slots[slot] = best
	}
}

func isValid(ap *wifi.AccessPoint) bool {
	return ap != nil && ap.Status == wifi.StatusValid
}
