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

package dbg_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ge42dal/MIPS/asm"
	"github.com/ge42dal/MIPS/dbg"
	"github.com/ge42dal/MIPS/vm"
)

const branchProg = `
main:
    addi $t0, $zero, 5
    addi $t1, $zero, 5
    beq  $t0, $t1, equal
    addi $t2, $zero, 999
equal:
    addi $t3, $zero, 42
    trap 5
`

// session assembles src, loads it the way the debug front-end does, and
// feeds script to the REPL, returning everything it printed.
func session(t *testing.T, src, script string) string {
	t.Helper()
	prog, err := asm.Assemble(t.Name(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	out := new(bytes.Buffer)
	cpu, err := vm.New(vm.Input(strings.NewReader("")), vm.Output(out))
	if err != nil {
		t.Fatal(err)
	}
	st := cpu.State()
	if err := st.Mem.LoadImage(prog.Image, 0); err != nil {
		t.Fatal(err)
	}
	st.SetPC(prog.Entry)
	st.SetReg(vm.SP, 0xFFFFFFFC)
	if err := dbg.New(prog, cpu, out).Run(strings.NewReader(script)); err != nil {
		t.Fatalf("session: %v", err)
	}
	return out.String()
}

func wantLines(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output lacks %q\noutput:\n%s", w, out)
		}
	}
}

func TestStepReportsDeltas(t *testing.T) {
	out := session(t, branchProg, "step\nquit\n")
	wantLines(t, out,
		"0x00000000: addi $t0, $zero, 5", // instruction shown on load
		"State changes:",
		"  $t0: 0x00000000 -> 0x00000005",
		"  PC: 0x00000000 -> 0x00000004",
		"0x00000004: addi $t1, $zero, 5",
	)
}

func TestStepAliases(t *testing.T) {
	long := session(t, branchProg, "step\nquit\n")
	short := session(t, branchProg, "s\nq\n")
	if long != short {
		t.Error("alias s/q behaves differently from step/quit")
	}
}

func TestNoStateChanges(t *testing.T) {
	// a taken self-branch leaves registers and PC exactly as they were
	out := session(t, "main:\n    beq $t0, $t0, main\n    trap 5\n", "step\nquit\n")
	wantLines(t, out, "No state changes.")
}

func TestRegCommand(t *testing.T) {
	out := session(t, branchProg, "step\nreg $t0\nreg $bogus\nquit\n")
	wantLines(t, out,
		"$t0 = 0x00000005 (5)",
		"Invalid register name: $bogus",
	)
}

func TestMemCommands(t *testing.T) {
	src := `
main:
    .byte 0xFF
    .half 0x1234
    trap 5
`
	out := session(t, src, "mem8 0\nmem16 0x1\nmem32 0\nmem8 zzz\nquit\n")
	wantLines(t, out,
		"mem8[0x0] = 0xFF (255)",
		"mem16[0x1] = 0x1234 (4660)",
		"Invalid address: zzz",
	)
}

func TestBreakAndContinue(t *testing.T) {
	out := session(t, branchProg, "break equal\nbreak equal\ncontinue\nquit\n")
	wantLines(t, out,
		"Breakpoint set at 0x10",
		"Breakpoint already exists at 0x10",
		"Continuing execution...",
		"Breakpoint hit at 0x10",
		"  $t0: 0x00000000 -> 0x00000005",
		"  $t1: 0x00000000 -> 0x00000005",
		"  PC: 0x00000000 -> 0x00000010",
		"0x00000010: addi $t3, $zero, 42",
	)
}

func TestBreakAtNumericAddress(t *testing.T) {
	out := session(t, branchProg, "break 0x4\ncontinue\nquit\n")
	wantLines(t, out, "Breakpoint set at 0x4", "Breakpoint hit at 0x4")
}

func TestContinueToHalt(t *testing.T) {
	out := session(t, branchProg, "continue\n")
	wantLines(t, out, "Program halted.")
	if strings.Contains(out, "Breakpoint hit") {
		t.Error("no breakpoint was set, none should hit")
	}
}

func TestInvalidCommand(t *testing.T) {
	out := session(t, branchProg, "frobnicate\nquit\n")
	wantLines(t, out, "Invalid command. Type 'help' for available commands.")
}

func TestHelp(t *testing.T) {
	out := session(t, branchProg, "help\nquit\n")
	wantLines(t, out, "Available commands:", "break <label|address>")
}

func TestStepAfterHalt(t *testing.T) {
	out := session(t, "main:\n    trap 5\n", "step\nstep\nquit\n")
	// the REPL announces the halt and ends; a later step never runs
	wantLines(t, out, "Program halted.")
	if strings.Contains(out, "Program has halted.") {
		t.Error("REPL should have ended at the halt")
	}
}
