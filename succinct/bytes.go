package succinct

import "encoding/binary"

func readU64LE(b []byte) uint64     { return binary.LittleEndian.Uint64(b) }
func writeU64LE(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

func appendU64LE(b []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, v)
}
