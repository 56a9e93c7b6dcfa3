package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/smoynes/runlevel/internal/cli"
	"github.com/smoynes/runlevel/internal/console"
	"github.com/smoynes/runlevel/internal/hal"
	"github.com/smoynes/runlevel/internal/hal/controller"
	"github.com/smoynes/runlevel/internal/log"
)

// Demo is a demonstration command.
func Demo() cli.Command {
	return new(demo)
}

type demo struct {
	debug bool
	quiet bool
}

func (demo) Description() string {
	return "run a demonstration of interrupt dispatch and run-level management"
}

func (d demo) Usage(out io.Writer) error {
	var err error
	_, err = fmt.Fprintln(out, `
demo [ -debug | -quiet ]

Run a single simulated CPU through a few seconds of clock-tick
interrupts, logging each tick with the run level its handler ran at.
If standard input is a terminal, key presses are also delivered as
keyboard interrupts, and each key is logged.`)

	return err
}

func (d *demo) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)

	fs.BoolVar(&d.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&d.quiet, "quiet", false, "enable quiet output")

	return fs
}

func (d demo) Run(ctx context.Context, args []string, out io.Writer, _ *log.Logger) int {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if d.quiet {
		log.LogLevel.Set(log.Error)
	}

	if d.debug {
		log.LogLevel.Set(log.Debug)
	}

	logger := log.NewFormattedLogger(out)
	log.SetDefault(logger)

	logger.Info("bringing up platform", "cpus", 1)

	const cpu = hal.CPUID(0)

	table := hal.DefaultVectorTable()
	table.Set(0xfe, hal.Clock)
	table.Set(0x21, hal.Device)

	platform := hal.NewPlatform(1, table)

	dispatcher := hal.NewDispatcher(platform, table,
		hal.WithDiagnostic(func(msg string, args ...any) { logger.Warn(msg, args...) }),
	)

	pb := platform.Block(cpu)

	pb.Register(&hal.Handler{
		Vector:   0xfe,
		RunLevel: hal.Clock,
		Trigger:  hal.Edge,
		Service: func(any) hal.Claim {
			logger.Info("clock tick", "run_level", dispatcher.GetRunLevel(cpu))
			return hal.Claimed
		},
	})

	kbd := console.NewKeyboard(0x21)

	pb.Register(&hal.Handler{
		Vector:   0x21,
		RunLevel: hal.Device,
		Trigger:  hal.Edge,
		Service: func(any) hal.Claim {
			logger.Info("key pressed", "key", kbd.LastKey())
			return hal.Claimed
		},
	})

	pic := controller.NewPIC(0xfe)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	if cons, err := console.NewConsole(os.Stdin, os.Stdout, os.Stderr); err == nil {
		defer cons.Restore()

		go func() {
			_ = cons.Run(ctx, dispatcher, cpu, kbd)
		}()
	} else {
		logger.Debug("no terminal attached, skipping keyboard input", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return 0
		case <-ticker.C:
			pic.Raise(0)
			dispatcher.SimulateTrapEntry(cpu)
			dispatcher.DispatchInterrupt(cpu, pic, nil)
		}
	}
}
