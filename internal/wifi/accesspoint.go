package wifi

import (
	"bytes"
	"errors"
	"fmt"
)

// Size limits
const (
	SSIDSize        = 32  // SSID buffer capacity in bytes
	MaxAccessPoints = 255 // list length is carried in 8 bits
)

var (
	ErrSSIDTooLong   = errors.New("wifi: ssid too long")
	ErrNullParameter = errors.New("wifi: nil access point")
)

// Status is the processing state of an access point. It only moves forward:
// New -> FilteredOut | Valid -> Sent.
type Status uint8

const (
	StatusNew Status = iota
	StatusFilteredOut
	StatusValid
	StatusSent
)

// String returns the status name used in logs and metrics
func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusFilteredOut:
		return "filtered_out"
	case StatusValid:
		return "valid"
	case StatusSent:
		return "sent"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// SSID is a fixed-capacity network name. Content ends at the first NUL byte
// or at the end of the buffer.
type SSID [SSIDSize]byte

// NewSSID copies name into a fixed SSID buffer
func NewSSID(name string) (*SSID, error) {
	if len(name) > SSIDSize {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrSSIDTooLong, len(name), SSIDSize)
	}
	var s SSID
	copy(s[:], name)
	return &s, nil
}

// Bytes returns the SSID content up to the terminator
func (s *SSID) Bytes() []byte {
	if s == nil {
		return nil
	}
	if end := bytes.IndexByte(s[:], 0); end >= 0 {
		return s[:end]
	}
	return s[:]
}

// String returns the SSID content as a string
func (s *SSID) String() string {
	return string(s.Bytes())
}

// IsEmpty reports whether the SSID starts with the terminator
func (s *SSID) IsEmpty() bool {
	return s == nil || s[0] == 0
}

// AccessPoint is one scanned wireless network observation
type AccessPoint struct {
	MACAddress string // "xx:xx:xx:xx:xx:xx"
	SSID       *SSID  // nil when the scan did not report one
	RSSI       int16  // dBm
	Status     Status
}

// List is an ordered set of access points owned by the caller. The payload
// pipeline only updates Status and never reorders the list.
type List []*AccessPoint

// Count returns the number of access points in the given status
func (l List) Count(status Status) int {
	n := 0
	for _, ap := range l {
		if ap != nil && ap.Status == status {
			n++
		}
	}
	return n
}
