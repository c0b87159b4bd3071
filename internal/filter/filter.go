package filter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"atlaswifi/internal/mac"
	"atlaswifi/internal/wifi"
)

// Set selects the optional filters. Bits outside the defined filters are
// accepted and ignored.
type Set uint8

const (
	LocallyAdministered Set = 1 << iota
	SSIDEmpty
	SSIDBlacklist

	// Count is the number of defined filters
	Count = 3
)

// All enables every defined filter
const All = LocallyAdministered | SSIDEmpty | SSIDBlacklist

var names = map[Set]string{
	LocallyAdministered: "locally-administered",
	SSIDEmpty:           "ssid-empty",
	SSIDBlacklist:       "ssid-blacklist",
}

// Has reports whether every filter in other is enabled in s
func (s Set) Has(other Set) bool {
	return other != 0 && s&other == other
}

// String lists the enabled filter names, comma separated
func (s Set) String() string {
	var parts []string
	for _, f := range chain {
		if s.Has(f.bit) {
			parts = append(parts, names[f.bit])
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Parse converts filter names into a Set. "none" and "" yield an empty set,
// "all" enables every filter.
func Parse(names ...string) (Set, error) {
	var s Set
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "", "none":
			continue
		case "all":
			s |= All
			continue
		}
		bit, ok := lookup(name)
		if !ok {
			return 0, fmt.Errorf("unknown filter %q", name)
		}
		s |= bit
	}
	return s, nil
}

func lookup(name string) (Set, bool) {
	for bit, n := range names {
		if n == name {
			return bit, true
		}
	}
	return 0, false
}

// predicate reports whether the access point passes the filter
type predicate func(ap *wifi.AccessPoint, addr mac.Address) bool

// chain lists the optional filters in evaluation order
var chain = [Count]struct {
	bit   Set
	check predicate
}{
	{LocallyAdministered, notLocallyAdministered},
	{SSIDEmpty, ssidNotEmpty},
	{SSIDBlacklist, ssidNotBlacklisted},
}

// blacklist holds lowercase tokens that mark hotspots and phones
var blacklist = [...][]byte{
	[]byte("phone"),
	[]byte("huawei"),
	[]byte("samsung"),
	[]byte("android"),
	[]byte("apple"),
}

func notLocallyAdministered(_ *wifi.AccessPoint, addr mac.Address) bool {
	return !addr.IsLocallyAdministered()
}

func ssidNotEmpty(ap *wifi.AccessPoint, _ mac.Address) bool {
	return !ap.SSID.IsEmpty()
}

// ssidNotBlacklisted rejects SSIDs containing a blacklisted token in any
// ASCII case. A missing SSID passes.
func ssidNotBlacklisted(ap *wifi.AccessPoint, _ mac.Address) bool {
	if ap.SSID == nil {
		return true
	}

	var lower [wifi.SSIDSize]byte
	name := ap.SSID.Bytes()
	for i, c := range name {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}

	for _, token := range blacklist {
		if bytes.Contains(lower[:len(name)], token) {
			return false
		}
	}
	return true
}

// Engine marks new access points as valid or filtered out
type Engine struct {
	logger *logrus.Logger

	// Filters holds the enabled optional filters
	Filters Set
	// CheckParameters rejects nil entries and malformed MAC separators
	CheckParameters bool
}

// NewEngine creates a filter engine with no optional filters enabled
func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{
		logger:          logger,
		CheckParameters: true,
	}
}

// Apply filters every access point still in StatusNew, in list order.
// Access points in any other status are left untouched. A MAC decoding
// failure aborts the pass.
func (e *Engine) Apply(list wifi.List) error {
	for i, ap := range list {
		if ap == nil {
			if e.CheckParameters {
				return fmt.Errorf("access point %d: %w", i, wifi.ErrNullParameter)
			}
			continue
		}

		if ap.Status != wifi.StatusNew {
			continue
		}

		addr, err := mac.Decode(ap.MACAddress, e.CheckParameters)
		if err != nil {
			return fmt.Errorf("access point %d: %w", i, err)
		}

		ap.Status = wifi.StatusFilteredOut

		// Reserved and multicast addresses are never kept
		if addr.IsReserved() || addr.IsMulticast() {
			e.logger.WithFields(logrus.Fields{
				"index":     i,
				"mac":       addr.String(),
				"reserved":  addr.IsReserved(),
				"multicast": addr.IsMulticast(),
			}).Debug("Access point rejected by mandatory filter")
			continue
		}

		if rejectedBy, ok := e.check(ap, addr); !ok {
			e.logger.WithFields(logrus.Fields{
				"index":  i,
				"mac":    addr.String(),
				"filter": names[rejectedBy],
			}).Debug("Access point rejected by filter")
			continue
		}

		ap.Status = wifi.StatusValid
	}

	return nil
}

// check runs the enabled filters, stopping at the first failure
func (e *Engine) check(ap *wifi.AccessPoint, addr mac.Address) (Set, bool) {
	for _, f := range chain {
		if e.Filters&f.bit == 0 {
			continue
		}
		if !f.check(ap, addr) {
			return f.bit, false
		}
	}
	return 0, true
}
