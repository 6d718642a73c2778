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

package main

import (
	"fmt"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"gopkg.in/urfave/cli.v2"

	"github.com/master-g/m68k/disasm"
	"github.com/master-g/m68k/vm"
)

// monitor holds the widgets the dashboard redraws on every step, reset,
// or interrupt request. It is built fresh per monitorCommand invocation
// rather than kept as package globals, so nothing leaks between runs.
type monitor struct {
	m *vm.Machine

	paragraphCPU  *widgets.Paragraph
	paragraphCode *widgets.Paragraph
	paragraphRam0 *widgets.Paragraph
	paragraphRam1 *widgets.Paragraph
	paragraphTips *widgets.Paragraph
}

func newMonitor(m *vm.Machine) *monitor {
	mon := &monitor{m: m}

	mon.paragraphRam0 = widgets.NewParagraph()
	mon.paragraphRam0.Title = "RAM @ $0000"
	mon.paragraphRam0.SetRect(0, 0, 56, 18)

	mon.paragraphRam1 = widgets.NewParagraph()
	mon.paragraphRam1.Title = "RAM @ $1000"
	mon.paragraphRam1.SetRect(0, 18, 56, 36)

	mon.paragraphCPU = widgets.NewParagraph()
	mon.paragraphCPU.Title = "CPU"
	mon.paragraphCPU.SetRect(56, 0, 56+44, 8)

	mon.paragraphCode = widgets.NewParagraph()
	mon.paragraphCode.Title = "Disassembly"
	mon.paragraphCode.SetRect(56, 8, 56+44, 8+28)

	mon.paragraphTips = widgets.NewParagraph()
	mon.paragraphTips.Title = "Tips"
	mon.paragraphTips.SetRect(0, 36, 56+44, 39)
	mon.paragraphTips.Text = "SPACE = Step    R = Reset    I = IRQ lvl2    N = NMI lvl7    Q = Quit"

	return mon
}

func (mon *monitor) renderRam(p *widgets.Paragraph, addr uint32, numRow, numCol int) {
	curAddr := addr
	sb := &strings.Builder{}
	for row := 0; row < numRow; row++ {
		sb.WriteString(fmt.Sprintf("$%06X:", curAddr))
		for col := 0; col < numCol; col++ {
			sb.WriteRune(' ')
			v, ok := mon.m.Bus.ReadByte(curAddr)
			if !ok {
				sb.WriteString("--")
			} else {
				sb.WriteString(fmt.Sprintf("%02X", v))
			}
			curAddr++
		}
		sb.WriteRune('\n')
	}
	p.Text = sb.String()
}

func (mon *monitor) renderCPU() {
	mon.paragraphCPU.Text = disasm.FormatRegisters(mon.m.CPU.Registers)
}

func (mon *monitor) renderCode() {
	pc := mon.m.CPU.Registers.PC
	lo := pc
	if lo > 16 {
		lo -= 16
	} else {
		lo = 0
	}
	lines := disasm.Range(mon.m.Bus, lo, pc+48)

	sb := strings.Builder{}
	for _, line := range lines {
		if line.Addr == pc {
			sb.WriteString(fmt.Sprintf("[%s](fg:cyan)\n", line.String()))
		} else {
			sb.WriteString(line.String())
			sb.WriteRune('\n')
		}
	}
	mon.paragraphCode.Text = sb.String()
}

func (mon *monitor) draw() {
	mon.renderRam(mon.paragraphRam0, 0x0000, 16, 16)
	mon.renderRam(mon.paragraphRam1, 0x1000, 16, 16)
	mon.renderCPU()
	mon.renderCode()
	ui.Render(mon.paragraphRam0, mon.paragraphRam1, mon.paragraphCPU, mon.paragraphCode, mon.paragraphTips)
}

func monitorCommand(c *cli.Context) error {
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
	if err := m.Reset(); err != nil {
		return err
	}

	if err := ui.Init(); err != nil {
		return fmt.Errorf("monitor: init termui: %w", err)
	}
	defer ui.Close()

	mon := newMonitor(m)
	mon.draw()

	for e := range ui.PollEvents() {
		if e.Type != ui.KeyboardEvent {
			continue
		}
		switch e.ID {
		case "q", "Q", "<C-c>":
			return nil
		case "<Space>":
			_ = m.Step()
		case "r", "R":
			_ = m.Reset()
		case "i", "I":
			m.RequestAutoInterrupt(2)
		case "n", "N":
			m.RequestAutoInterrupt(7)
		}
		mon.draw()
	}
	return nil
}
