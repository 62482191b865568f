// This file is part of mips - https://github.com/ge42dal/MIPS
//
// Copyright 2025 The mips authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dbg implements a line-oriented debugger over an assembled
// program and a CPU. It owns the machine for its lifetime: stepping,
// breakpoints and state inspection all go through the Debugger.
//
// After each step the debugger reports which registers (and the PC)
// changed, comparing against a by-value snapshot taken just before the
// step, and shows the source form of the next instruction.
package dbg

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ge42dal/MIPS/asm"
	"github.com/ge42dal/MIPS/internal/wio"
	"github.com/ge42dal/MIPS/vm"
	"github.com/pkg/errors"
)

type snapshot struct {
	regs [vm.NumRegs]uint32
	pc   uint32
	hi   uint32
	lo   uint32
}

// Debugger drives a CPU whose memory already holds the program image.
type Debugger struct {
	cpu    *vm.CPU
	labels map[string]uint32
	disasm map[uint32]string
	bps    map[uint32]struct{}
	prev   snapshot
	out    *wio.ErrWriter
}

// New wires a debugger around an assembled program and a CPU that has
// the program loaded. Command output goes to out.
func New(prog *asm.Program, cpu *vm.CPU, out io.Writer) *Debugger {
	d := &Debugger{
		cpu:    cpu,
		labels: prog.Labels,
		disasm: make(map[uint32]string),
		bps:    make(map[uint32]struct{}),
		out:    wio.NewErrWriter(out),
	}
	for i := range prog.Lines {
		ln := &prog.Lines[i]
		d.disasm[ln.Addr] = ln.Text()
	}
	return d
}

// Run reads commands from in until quit, end of input, or a program
// halt. Bad commands are reported inline and the loop keeps going.
func (d *Debugger) Run(in io.Reader) error {
	fmt.Fprintln(d.out, "MIPS debugger - type 'help' for commands")
	d.printInstruction(d.cpu.State().PC())
	d.prompt()
	s := bufio.NewScanner(in)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			d.prompt()
			continue
		}
		if quit := d.dispatch(line); quit {
			break
		}
		if d.cpu.Halted() {
			fmt.Fprintln(d.out, "Program halted.")
			break
		}
		d.prompt()
		if d.out.Err != nil {
			return d.out.Err
		}
	}
	if err := s.Err(); err != nil {
		return errors.Wrap(err, "read command")
	}
	return d.out.Err
}

// dispatch parses and runs one command line. It reports whether the REPL
// should end.
func (d *Debugger) dispatch(line string) bool {
	f := strings.Fields(line)
	var arg string
	if len(f) > 1 {
		arg = f[1]
	}
	switch strings.ToLower(f[0]) {
	case "step", "s":
		d.step()
	case "reg", "r":
		d.showReg(arg)
	case "mem8":
		d.showMem(1, arg)
	case "mem16":
		d.showMem(2, arg)
	case "mem32":
		d.showMem(4, arg)
	case "break", "b":
		d.setBreak(arg)
	case "continue", "c":
		d.cont()
	case "help", "h":
		d.help()
	case "quit", "q":
		return true
	default:
		fmt.Fprintln(d.out, "Invalid command. Type 'help' for available commands.")
	}
	return false
}

func (d *Debugger) step() {
	if d.cpu.Halted() {
		fmt.Fprintln(d.out, "Program has halted.")
		return
	}
	d.capture()
	if err := d.cpu.Step(); err != nil {
		fmt.Fprintf(d.out, "Execution error: %v\n", err)
		return
	}
	d.reportChanges()
	if !d.cpu.Halted() {
		d.printInstruction(d.cpu.State().PC())
	}
}

func (d *Debugger) cont() {
	if d.cpu.Halted() {
		fmt.Fprintln(d.out, "Program has halted.")
		return
	}
	fmt.Fprintln(d.out, "Continuing execution...")
	d.capture()
	for !d.cpu.Halted() {
		if err := d.cpu.Step(); err != nil {
			fmt.Fprintf(d.out, "Execution error: %v\n", err)
			return
		}
		pc := d.cpu.State().PC()
		if _, hit := d.bps[pc]; hit {
			fmt.Fprintf(d.out, "Breakpoint hit at 0x%X\n", pc)
			d.reportChanges()
			d.printInstruction(pc)
			return
		}
	}
}

func (d *Debugger) showReg(name string) {
	r, err := vm.ParseReg(name)
	if err != nil {
		fmt.Fprintf(d.out, "Invalid register name: %s\n", name)
		return
	}
	v := d.cpu.State().Reg(r)
	fmt.Fprintf(d.out, "%s = 0x%08X (%d)\n", name, v, int32(v))
}

func (d *Debugger) showMem(width int, arg string) {
	a, err := parseAddr(arg)
	if err != nil {
		fmt.Fprintf(d.out, "Invalid address: %s\n", arg)
		return
	}
	m := d.cpu.State().Mem
	switch width {
	case 1:
		v, _ := m.LoadByte(a)
		fmt.Fprintf(d.out, "mem8[0x%X] = 0x%02X (%d)\n", a, v, v)
	case 2:
		v, err := m.LoadHalf(a)
		if err != nil {
			fmt.Fprintf(d.out, "Memory access error: %v\n", err)
			return
		}
		fmt.Fprintf(d.out, "mem16[0x%X] = 0x%04X (%d)\n", a, v, int16(v))
	case 4:
		v, err := m.LoadWord(a)
		if err != nil {
			fmt.Fprintf(d.out, "Memory access error: %v\n", err)
			return
		}
		fmt.Fprintf(d.out, "mem32[0x%X] = 0x%08X (%d)\n", a, v, int32(v))
	}
}

// setBreak adds a breakpoint at a label or a numeric address, if one is
// not already there.
func (d *Debugger) setBreak(arg string) {
	a, ok := d.labels[arg]
	if !ok {
		var err error
		a, err = parseAddr(arg)
		if err != nil {
			fmt.Fprintf(d.out, "Invalid label or address: %s\n", arg)
			return
		}
	}
	if _, exists := d.bps[a]; exists {
		fmt.Fprintf(d.out, "Breakpoint already exists at 0x%X\n", a)
		return
	}
	d.bps[a] = struct{}{}
	fmt.Fprintf(d.out, "Breakpoint set at 0x%X\n", a)
}

func (d *Debugger) help() {
	fmt.Fprint(d.out, `Available commands:
  step                    - Execute current instruction and move to next
  reg <register>          - Show register value (e.g., reg $t0, reg $ra)
  mem8 <address>          - Show 8-bit value at memory address
  mem16 <address>         - Show 16-bit value at memory address
  mem32 <address>         - Show 32-bit value at memory address
  break <label|address>   - Set breakpoint at label or address
  continue                - Continue execution until breakpoint or halt
  help                    - Show this help message
  quit                    - Exit debugger
`)
}

// capture takes the by-value snapshot the next delta report compares
// against.
func (d *Debugger) capture() {
	st := d.cpu.State()
	for i := vm.Reg(0); i < vm.NumRegs; i++ {
		d.prev.regs[i] = st.Reg(i)
	}
	d.prev.pc, d.prev.hi, d.prev.lo = st.PC(), st.HI(), st.LO()
}

// reportChanges lists every register whose value differs from the
// snapshot, then the PC if it moved.
func (d *Debugger) reportChanges() {
	st := d.cpu.State()
	found := false
	header := func() {
		if !found {
			fmt.Fprintln(d.out, "State changes:")
			found = true
		}
	}
	for i := vm.Reg(0); i < vm.NumRegs; i++ {
		cur := st.Reg(i)
		if cur != d.prev.regs[i] {
			header()
			fmt.Fprintf(d.out, "  %s: 0x%08X -> 0x%08X\n", i, d.prev.regs[i], cur)
		}
	}
	if pc := st.PC(); pc != d.prev.pc {
		header()
		fmt.Fprintf(d.out, "  PC: 0x%08X -> 0x%08X\n", d.prev.pc, pc)
	}
	if !found {
		fmt.Fprintln(d.out, "No state changes.")
	}
}

func (d *Debugger) printInstruction(pc uint32) {
	fmt.Fprintf(d.out, "0x%08X: %s\n", pc, d.instructionAt(pc))
}

// instructionAt prefers the source form recorded by the assembler and
// falls back to the raw word for addresses outside the program.
func (d *Debugger) instructionAt(pc uint32) string {
	if s, ok := d.disasm[pc]; ok {
		return s
	}
	w, err := d.cpu.State().Mem.LoadWord(pc)
	if err != nil {
		return "invalid memory access"
	}
	if w == 0 {
		return "nop"
	}
	return fmt.Sprintf("unknown instruction (0x%08X)", w)
}

func (d *Debugger) prompt() {
	io.WriteString(d.out, "> ")
}

func parseAddr(s string) (uint32, error) {
	if s == "" {
		return 0, errors.New("empty address")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(n), err
	}
	n, err := strconv.ParseUint(s, 10, 32)
	return uint32(n), err
}
