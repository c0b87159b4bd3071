package mac

import (
	"errors"
	"fmt"
)

var (
	ErrSeparator = errors.New("mac: address separator not found")
	ErrFormat    = errors.New("mac: invalid address format")
)

// Address is a raw 6-byte hardware address in network order
type Address [Size]byte

// Decode converts a colon-separated ASCII MAC address into raw bytes.
// Separators are only verified when checkSeparators is set; otherwise the
// hex pairs are read from their fixed positions regardless of what sits
// between them.
func Decode(ascii string, checkSeparators bool) (Address, error) {
	var addr Address

	if len(ascii) != ASCIISize {
		return addr, fmt.Errorf("%w: length %d, expected %d", ErrFormat, len(ascii), ASCIISize)
	}

	if checkSeparators {
		for i := 2; i < ASCIISize; i += pairStride {
			if ascii[i] != Separator {
				return addr, fmt.Errorf("%w: got %q at position %d", ErrSeparator, ascii[i], i)
			}
		}
	}

	for i, pos := 0, 0; i < Size; i, pos = i+1, pos+pairStride {
		high, err := hexValue(ascii[pos])
		if err != nil {
			return Address{}, fmt.Errorf("%w at position %d", err, pos)
		}
		low, err := hexValue(ascii[pos+1])
		if err != nil {
			return Address{}, fmt.Errorf("%w at position %d", err, pos+1)
		}
		addr[i] = (high<<4)&0xF0 | low&0x0F
	}

	return addr, nil
}

// hexValue converts one ASCII hex digit; anything above 'F' is treated as lowercase
func hexValue(ascii byte) (byte, error) {
	c := ascii
	if c > 'F' {
		c -= lowercaseOffset
	}

	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("%w: invalid hex digit %q", ErrFormat, ascii)
	}
}

// IsReserved reports whether every byte is 0x00 or 0xFF. Bytes are checked
// independently, so mixed 0x00/0xFF addresses are reserved too.
func (a Address) IsReserved() bool {
	for _, b := range a {
		if b != 0x00 && b != 0xFF {
			return false
		}
	}
	return true
}

// IsMulticast checks the I/G bit
func (a Address) IsMulticast() bool {
	return a[flagByteIndex]&IGBitMask != 0
}

// IsLocallyAdministered checks the U/L bit
func (a Address) IsLocallyAdministered() bool {
	return a[flagByteIndex]&ULBitMask != 0
}

// String returns the address as "XX:XX:XX:XX:XX:XX"
func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}
