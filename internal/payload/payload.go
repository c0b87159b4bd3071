package payload

import (
	"encoding/hex"
	"strings"

	"atlaswifi/internal/mac"
)

// Size is the uplink payload length in bytes
const Size = 12

// MaxMACs is the number of MAC addresses a payload can carry
const MaxMACs = Size / mac.Size

// Payload is the uplink message for one geolocation attempt. Count tells how
// many leading 6-byte blocks hold MAC addresses; the rest is zero.
type Payload struct {
	Bytes [Size]byte
	Count int
}

// MACs returns the encoded addresses in payload order
func (p Payload) MACs() []mac.Address {
	macs := make([]mac.Address, 0, p.Count)
	for i := 0; i < p.Count && i < MaxMACs; i++ {
		var addr mac.Address
		copy(addr[:], p.Bytes[i*mac.Size:])
		macs = append(macs, addr)
	}
	return macs
}

// Hex returns the full 12 bytes as uppercase hex
func (p Payload) Hex() string {
	return strings.ToUpper(hex.EncodeToString(p.Bytes[:]))
}

// put appends addr; a full payload is left unchanged
func (p *Payload) put(addr mac.Address) {
	if p.Count >= MaxMACs {
		return
	}
	copy(p.Bytes[p.Count*mac.Size:], addr[:])
	p.Count++
}
