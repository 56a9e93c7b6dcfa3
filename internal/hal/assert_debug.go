//go:build haldebug

package hal

func assertFailed(msg string) {
	panic("hal: invariant violation: " + msg)
}
