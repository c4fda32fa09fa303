package scrub

import "runtime"

// zeroFunc is a variable so the compiler cannot prove the writes are unused
// and optimise them away.
var zeroFunc = func(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Erase overwrites every byte of b with zero in place.
// It is a no-op for nil or empty slices.
func Erase(b []byte) {
	if len(b) == 0 {
		return
	}
	zeroFunc(b)
	runtime.KeepAlive(b)
}

// EraseAll erases each of the given slices.
func EraseAll(slices ...[]byte) {
	for _, b := range slices {
		Erase(b)
	}
}
