// Package memzero overwrites secret material in place once it is no longer
// needed.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}

// Runes overwrites an edited secret held as runes.
func Runes(r []rune) {
	for i := range r {
		r[i] = 0
	}
}
