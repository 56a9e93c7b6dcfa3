package hal

// assert.go gives the package's internal consistency checks a
// debug-assertable predicate without paying a release cost. Go has no built-in assertion
// facility and the teacher's pack never pulls one in from the ecosystem
// (testify's require is a test-only tool, not a runtime one), so this
// follows the teacher's own convention instead: panic on a genuinely
// impossible state (cf. MMIO.Store's fallback panic in the teacher), gated
// by a build tag so it costs nothing when the tag is absent.

import "fmt"

// assert panics with a formatted message when built with the "haldebug"
// build tag. See assert_debug.go / assert_release.go for the two
// implementations selected by that tag.
func assert(cond bool, format string, args ...any) {
	if !cond {
		assertFailed(fmt.Sprintf(format, args...))
	}
}
