package hal

// log.go wires this package's types into the teacher's internal/log
// conventions: types with interesting state implement LogValue so they can
// be logged as structured groups (log.Group("STATE", pb)) instead of being
// stringified ad hoc.

import (
	"io"

	"github.com/smoynes/runlevel/internal/log"
)

// discardLogger returns a logger that writes nowhere, used as the
// Dispatcher's default diagnostic sink before a caller installs a real one
// with WithDiagnostic.
func discardLogger() *log.Logger {
	return log.NewFormattedLogger(io.Discard)
}

func (pb *ProcessorBlock) LogValue() log.Value {
	return log.GroupValue(
		log.String("CPU", pb.String()),
		log.String("RUN_LEVEL", pb.runLevel.String()),
		log.Any("PENDING", pb.pending.Len()),
		log.Any("DISPATCH_PENDING", pb.pendingDispatch),
	)
}

func (q *PendingInterruptQueue) LogValue() log.Value {
	attrs := make([]log.Attr, 0, q.count)

	for i := 0; i < q.count; i++ {
		attrs = append(attrs, log.String("ENTRY", q.entries[i].String()))
	}

	return log.GroupValue(attrs...)
}
