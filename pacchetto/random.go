package pacchetto

import (
	"encoding/binary"
	"math/rand/v2"
)

// Chance reports whether an event with the given probability happens, using
// a ChaCha8 source seeded with seed so results are reproducible.
func Chance(seed uint64, probability float64) bool {
	var seedBytes [32]byte
	binary.LittleEndian.PutUint64(seedBytes[0:8], seed)
	r := rand.New(rand.NewChaCha8(seedBytes))

	return r.Float64() < probability
}
