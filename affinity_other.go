//go:build !linux

package wcall

func pinSlot(int) error { return nil }
