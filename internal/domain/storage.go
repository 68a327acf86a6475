package domain

import "encoding/binary"

// Storage is a strategy's persistent scratch region: 128 fixed-width 8-byte
// slots, zero-initialized at pool creation, opaque to the engine. It
// round-trips byte-for-byte across every hook call unless the strategy
// itself overwrites a slot.
type Storage [StorageSize]byte

// Slot reads the 8-byte slot at index i as a little-endian uint64.
func (s *Storage) Slot(i int) uint64 {
	return binary.LittleEndian.Uint64(s[i*8 : i*8+8])
}

// SetSlot writes v to the 8-byte slot at index i, little-endian.
func (s *Storage) SetSlot(i int, v uint64) {
	binary.LittleEndian.PutUint64(s[i*8:i*8+8], v)
}
