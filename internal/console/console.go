// Package console adapts a Unix terminal into a source of hardware
// interrupts for an internal/hal Dispatcher: key presses become a
// keyboard-data-ready interrupt, dispatched at whatever run level the
// caller's vector table assigns its vector.
package console

// console.go is grounded on the teacher's internal/tty Console: the same
// raw-mode setup, non-blocking-then-blocking read dance, and restore-on-
// cancel lifecycle, adapted so the thing on the other end of a keypress
// is a Dispatcher.DispatchInterrupt call instead of a virtual keyboard
// device register write.

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/smoynes/runlevel/internal/hal"
)

// ErrNoTTY is returned if standard input is not a terminal. In this case,
// asynchronous key delivery is not supported.
var ErrNoTTY = errors.New("console: not a TTY")

// Console is a serial console backed by Unix terminal I/O. Keys pressed
// are latched into a Keyboard controller and dispatched as interrupts;
// output written through Writer goes straight to the terminal.
type Console struct {
	in    *os.File
	out   *term.Terminal
	fd    int
	state *term.State

	keyCh chan uint8
}

// NewConsole creates a Console using the provided streams. If the input
// stream is not a terminal, ErrNoTTY is returned. Callers must call
// Restore to return the terminal to its initial state.
func NewConsole(sin, sout, serr *os.File) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	cons := &Console{
		fd:    fd,
		in:    sin,
		out:   term.NewTerminal(sin, ""),
		state: saved,
		keyCh: make(chan uint8, 1),
	}

	if err := cons.setTerminalParams(1, 0); err != nil {
		return nil, err
	}

	return cons, nil
}

// Writer returns an io.Writer that writes to the terminal.
func (c *Console) Writer() io.Writer {
	return c.out
}

// Restore returns the terminal to its initial state and unblocks any
// in-progress read.
func (c *Console) Restore() {
	_ = os.Stdin.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, true)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = os.Stdin.SetReadDeadline(time.Time{})

	return nil
}

// Run drives the console until ctx is cancelled: it reads bytes from the
// terminal and, for each one, latches it into kbd and raises a hardware
// interrupt on cpu through dispatcher — simulating both the trap-entry
// interrupt-disable and the DispatchInterrupt call a real trap handler
// would make.
func (c *Console) Run(ctx context.Context, dispatcher *hal.Dispatcher, cpu hal.CPUID, kbd *Keyboard) error {
	go c.readTerminal(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b := <-c.keyCh:
			kbd.Press(b)
			dispatcher.SimulateTrapEntry(cpu)
			dispatcher.DispatchInterrupt(cpu, kbd, nil)
		}
	}
}

// readTerminal reads bytes from the terminal and forwards them on keyCh
// until ctx is cancelled.
func (c *Console) readTerminal(ctx context.Context) {
	buf := bufio.NewReader(c.in)

	_ = syscall.SetNonblock(c.fd, false)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := buf.ReadByte()
		if err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case c.keyCh <- b:
		}
	}
}
