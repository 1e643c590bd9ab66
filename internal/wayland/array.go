package wayland

import "github.com/yaslama/go-wayland/wayland/client"

// Uint32s splits an array argument into 32-bit words. A buffer whose length
// is not a multiple of 4 is malformed and yields no words.
func Uint32s(b []byte) []uint32 {
	if len(b)%4 != 0 {
		return nil
	}
	words := make([]uint32, 0, len(b)/4)
	for i := 0; i+4 <= len(b); i += 4 {
		words = append(words, client.Uint32(b[i:i+4]))
	}
	return words
}

// Bitmask ORs together the flags that table assigns to each word. Words
// missing from table are ignored.
func Bitmask(words []uint32, table map[uint32]uint32) uint32 {
	var mask uint32
	for _, w := range words {
		mask |= table[w]
	}
	return mask
}

// ArrayBitmask is Bitmask over a raw array argument.
func ArrayBitmask(b []byte, table map[uint32]uint32) uint32 {
	return Bitmask(Uint32s(b), table)
}
