package hal

// walker.go is the handler chain walker (component B): given a vector and
// a processor, it runs every handler on that vector's chain, in
// registration order, honoring the level-triggered short-circuit rule and
// sampling for interrupt storms.

// runISR walks vector's handler chain on pb, passing trapFrame to any
// handler registered with the ContextTrapFrame sentinel. Precondition:
// pb.RunLevel() == table.RunLevel(vector). A nil chain head is logged as an
// anomaly and debug-asserted; it is not itself an EOI concern, since the
// caller owns EOI along every path.
func runISR(pb *ProcessorBlock, vector Vector, trapFrame any, clock TimeCounter, diag Diagnostic) {
	chain := pb.Chain(vector)

	if chain.Empty() {
		diag("unexpected interrupt", "vector", vector, "cpu", pb.id)
		assert(false, "unexpected interrupt on vector %0#2x, processor %d", uint8(vector), pb.id)

		return
	}

	for h := chain.head; h != nil; h = h.next {
		assert(pb.runLevel == h.RunLevel, "handler run level mismatch: cpu=%s at %s handler wants %s", pb, pb.runLevel, h.RunLevel)

		arg := h.Context
		if arg == ContextTrapFrame {
			arg = trapFrame
		}

		if checkStorm(h, clock) {
			diag("possible storm", "vector", vector, "handler", h, "cpu", pb.id)
		}

		claim := h.Service(arg)

		if claim == Claimed && h.Trigger == Level {
			break
		}
	}
}
