//go:build !loopdebug

package loop

func (b *Buffer) check() {}
