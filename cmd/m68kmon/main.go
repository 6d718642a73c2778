// Copyright © 2019 mg
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Command m68kmon is the CLI/TUI front end for the m68k core: load a flat
// binary or S-record image, run it, disassemble it, or drive it one
// instruction at a time in a live terminal dashboard.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"gopkg.in/urfave/cli.v2"

	"github.com/master-g/m68k/disasm"
	"github.com/master-g/m68k/internal/logx"
	"github.com/master-g/m68k/loader"
	"github.com/master-g/m68k/vm"
)

// stdLogger backs internal/logx.Logger with the standard log package so
// diagnostics go to stderr with an "m68kmon: " prefix and a timestamp
// instead of a bare fmt.Println scattered through the core.
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Log(msg string) {
	l.Output(2, msg)
}

func newStdLogger() *stdLogger {
	return &stdLogger{log.New(os.Stderr, "m68kmon: ", log.LstdFlags)}
}

func loadImage(path string, origin uint32, sRecord bool) (loader.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return loader.Image{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if sRecord {
		return loader.SRecord(f)
	}
	return loader.FlatBinary(f, origin)
}

func runCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		cli.ShowSubcommandHelp(c)
		return cli.Exit("", 86)
	}
	origin := uint32(c.Uint("origin"))
	steps := c.Int("steps")

	img, err := loadImage(path, origin, c.Bool("srecord"))
	if err != nil {
		return err
	}

	m := vm.New(uint32(c.Uint("ram")))
	if err := m.Load(img); err != nil {
		return err
	}
	if err := m.Reset(); err != nil {
		return err
	}

	ctx := context.Background()
	if steps <= 0 {
		if err := m.Run(ctx); err != nil {
			return err
		}
	} else {
		for i := 0; i < steps && !m.CPU.Halted(); i++ {
			if err := m.Step(); err != nil {
				return err
			}
		}
	}

	fmt.Println(disasm.FormatRegisters(m.CPU.Registers))
	return nil
}

func disasmCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		cli.ShowSubcommandHelp(c)
		return cli.Exit("", 86)
	}
	origin := uint32(c.Uint("origin"))

	img, err := loadImage(path, origin, c.Bool("srecord"))
	if err != nil {
		return err
	}

	m := vm.New(uint32(c.Uint("ram")))
	if err := m.Load(img); err != nil {
		return err
	}

	end := img.Origin + uint32(len(img.Data))
	for _, line := range disasm.Range(m.Bus, img.Origin, end) {
		fmt.Println(line.String())
	}
	return nil
}

func main() {
	logx.SetLogger(newStdLogger())
	logx.SetLogEnable(true)

	app := &cli.App{
		Name:    "m68kmon",
		Usage:   "load, run, disassemble, and monitor M68000 programs",
		Version: "v0.0.1",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "load an image, run it, and print the final register state",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "origin", Aliases: []string{"o"}, Usage: "load address for flat binaries", Value: 0},
					&cli.UintFlag{Name: "ram", Aliases: []string{"m"}, Usage: "RAM size in bytes", Value: 0x10000},
					&cli.IntFlag{Name: "steps", Aliases: []string{"n"}, Usage: "stop after N instructions (0 = run to halt)"},
					&cli.BoolFlag{Name: "srecord", Aliases: []string{"s"}, Usage: "treat the file as Motorola S-record text"},
				},
				Action: runCommand,
			},
			{
				Name:      "disasm",
				Usage:     "load an image and print a disassembly listing",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "origin", Aliases: []string{"o"}, Usage: "load address for flat binaries", Value: 0},
					&cli.UintFlag{Name: "ram", Aliases: []string{"m"}, Usage: "RAM size in bytes", Value: 0x10000},
					&cli.BoolFlag{Name: "srecord", Aliases: []string{"s"}, Usage: "treat the file as Motorola S-record text"},
				},
				Action: disasmCommand,
			},
			{
				Name:      "monitor",
				Usage:     "step an image in a live terminal dashboard",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "origin", Aliases: []string{"o"}, Usage: "load address for flat binaries", Value: 0},
					&cli.UintFlag{Name: "ram", Aliases: []string{"m"}, Usage: "RAM size in bytes", Value: 0x10000},
					&cli.BoolFlag{Name: "srecord", Aliases: []string{"s"}, Usage: "treat the file as Motorola S-record text"},
				},
				Action: monitorCommand,
			},
		},
	}

	for _, cmd := range app.Commands {
		sort.Sort(cli.FlagsByName(cmd.Flags))
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
