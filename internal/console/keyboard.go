package console

import (
	"fmt"
	"sync"

	"github.com/smoynes/runlevel/internal/hal"
)

// Keyboard is a one-line hal.Controller modeling a serial console's
// single keyboard-data-ready interrupt: PriorityCount is always zero, the
// way a simple UART's RX-ready line behaves, and the candy it hands back
// to EndOfInterrupt is the byte itself. Handlers do not see the candy;
// they read the acknowledged byte through LastKey.
type Keyboard struct {
	mut       sync.Mutex
	pending   bool
	data      uint8
	lastAcked uint8
	vector    hal.Vector
}

// NewKeyboard creates a Keyboard whose interrupts should be dispatched on
// vector.
func NewKeyboard(vector hal.Vector) *Keyboard {
	return &Keyboard{vector: vector}
}

// Press latches a byte read from the terminal and marks the line pending,
// as a UART would on receiving a character.
func (k *Keyboard) Press(b byte) {
	k.mut.Lock()
	defer k.mut.Unlock()

	k.data = b
	k.pending = true
}

func (k *Keyboard) Acknowledge() (hal.Vector, hal.MagicCandy, hal.Cause) {
	k.mut.Lock()
	defer k.mut.Unlock()

	if !k.pending {
		return 0, 0, hal.Spurious
	}

	k.pending = false
	k.lastAcked = k.data

	return k.vector, hal.MagicCandy(k.data), hal.LineFired
}

// LastKey returns the byte most recently acknowledged — the handler's way
// of reading what arrived without a second round trip through Acknowledge.
func (k *Keyboard) LastKey() uint8 {
	k.mut.Lock()
	defer k.mut.Unlock()

	return k.lastAcked
}

func (*Keyboard) EndOfInterrupt(hal.MagicCandy) {}

func (*Keyboard) PriorityCount() int { return 0 }

func (k *Keyboard) String() string {
	return fmt.Sprintf("Keyboard(vector:%0#2x)", uint8(k.vector))
}
