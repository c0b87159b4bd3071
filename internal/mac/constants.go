package mac

// MAC address layout constants
const (
	ASCIISize = 17 // "xx:xx:xx:xx:xx:xx"
	Size      = 6  // raw bytes

	Separator = ':'

	pairStride = 3 // two hex digits plus one separator
)

// First-byte flag bits
const (
	IGBitMask = 0x01 // individual/group: set for multicast
	ULBitMask = 0x02 // universal/local: set for locally administered

	flagByteIndex = 0
)

// lowercaseOffset maps 'a'-'f' onto 'A'-'F'
const lowercaseOffset = 0x20
