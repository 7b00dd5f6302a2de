//go:build loopdebug

package loop

import "fmt"

func (b *Buffer) check() {
	if b.length < 1 || b.length > len(b.samples) {
		panic(fmt.Sprintf("loop: length %d outside [1, %d]", b.length, len(b.samples)))
	}

	if b.cursor < 0 || b.cursor >= b.length {
		panic(fmt.Sprintf("loop: cursor %d outside [0, %d)", b.cursor, b.length))
	}
}
