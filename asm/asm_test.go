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

package asm_test

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/ge42dal/MIPS/asm"
	"github.com/ge42dal/MIPS/vm"
	"github.com/pkg/errors"
)

func assemble(t *testing.T, src string) *asm.Program {
	t.Helper()
	prog, err := asm.Assemble(t.Name(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return prog
}

func word(t *testing.T, img []byte, addr uint32) uint32 {
	t.Helper()
	if int(addr)+4 > len(img) {
		t.Fatalf("address %#x outside image of %d bytes", addr, len(img))
	}
	return binary.LittleEndian.Uint32(img[addr : addr+4])
}

func TestLayoutAndLabels(t *testing.T) {
	prog := assemble(t, `
main:
    addi $t0, $zero, 1
data:
    .byte 1, 2, 3
str:
    .asciiz "hi"
buf:
    .space 6
words:
    .word 1, 0x10
end:
    trap 5
`)
	wantLabels := map[string]uint32{
		"main": 0, "data": 4, "str": 7, "buf": 10, "words": 16, "end": 24,
	}
	for name, addr := range wantLabels {
		if got, ok := prog.Labels[name]; !ok || got != addr {
			t.Errorf("label %s = %#x (present %v), want %#x", name, got, ok, addr)
		}
	}
	if prog.Entry != 0 {
		t.Errorf("entry = %#x, want 0", prog.Entry)
	}
	if len(prog.Image) != 28 {
		t.Fatalf("image size = %d, want 28", len(prog.Image))
	}
	if !bytes.Equal(prog.Image[4:7], []byte{1, 2, 3}) {
		t.Errorf(".byte emitted % x", prog.Image[4:7])
	}
	if !bytes.Equal(prog.Image[7:10], []byte{'h', 'i', 0}) {
		t.Errorf(".asciiz emitted % x", prog.Image[7:10])
	}
	if !bytes.Equal(prog.Image[10:16], make([]byte, 6)) {
		t.Errorf(".space emitted % x", prog.Image[10:16])
	}
	if !bytes.Equal(prog.Image[16:24], []byte{1, 0, 0, 0, 0x10, 0, 0, 0}) {
		t.Errorf(".word emitted % x", prog.Image[16:24])
	}
}

// The first-pass size of every line must agree with the second-pass
// emit, or labels drift from the image.
func TestSizesMatchEmit(t *testing.T) {
	prog := assemble(t, `
main:
    addi $t0, $zero, 1
    .half 1, 2, 3
    .ascii "a b c"
    .asciiz ""
    .space 3
    .word main
    trap 5
`)
	var total uint32
	for i := range prog.Lines {
		ln := &prog.Lines[i]
		if ln.Addr != total {
			t.Errorf("line %d (%s): address %#x, want %#x", i, ln.Text(), ln.Addr, total)
		}
		total += ln.Size
	}
	if int(total) != len(prog.Image) {
		t.Errorf("layout says %d bytes, image has %d", total, len(prog.Image))
	}
}

func TestEntryAddress(t *testing.T) {
	prog := assemble(t, `
setup:
    addi $t0, $zero, 1
main:
    trap 5
`)
	if prog.Entry != 4 {
		t.Errorf("entry = %#x, want 4", prog.Entry)
	}
	if prog := assemble(t, "start:\n    trap 5\n"); prog.Entry != 0 {
		t.Errorf("entry without main = %#x, want 0", prog.Entry)
	}
}

func TestBranchOffsets(t *testing.T) {
	prog := assemble(t, `
main:
    beq $t0, $t1, fwd
    addi $t2, $zero, 1
fwd:
    bne $t0, $t1, main
    trap 5
`)
	if imm := uint16(word(t, prog.Image, 0)); imm != 1 {
		t.Errorf("forward branch imm = %d, want 1", imm)
	}
	// main is 12 bytes behind the instruction after the bne
	if imm := uint16(word(t, prog.Image, 8)); imm != 0xFFFD {
		t.Errorf("backward branch imm = %#04x, want 0xFFFD", imm)
	}
}

func TestJumpTarget(t *testing.T) {
	prog := assemble(t, `
main:
    j over
    addi $t0, $zero, 1
over:
    trap 5
`)
	in := vm.Decode(word(t, prog.Image, 0))
	if in.Name != "j" || in.Target != 2 {
		t.Errorf("decoded %s target=%d, want j target=2", in.Name, in.Target)
	}
}

func TestNegativeImmediateTruncates(t *testing.T) {
	prog := assemble(t, "main:\n    addi $t0, $zero, -10\n    trap 5\n")
	in := vm.Decode(word(t, prog.Image, 0))
	if in.Imm != 0xFFF6 {
		t.Errorf("imm = %#04x, want 0xFFF6", in.Imm)
	}
}

func TestMemOperandForms(t *testing.T) {
	prog := assemble(t, `
main:
    lw $t0, 8($sp)
    sw $t0, -4($sp)
    lb $t1, ($sp)
    trap 5
`)
	in := vm.Decode(word(t, prog.Image, 0))
	if in.Rt != vm.T0 || in.Rs != vm.SP || in.Imm != 8 {
		t.Errorf("lw fields: rt=%s rs=%s imm=%d", in.Rt, in.Rs, in.Imm)
	}
	in = vm.Decode(word(t, prog.Image, 4))
	if in.Imm != 0xFFFC {
		t.Errorf("sw imm = %#04x, want 0xFFFC", in.Imm)
	}
	in = vm.Decode(word(t, prog.Image, 8))
	if in.Rs != vm.SP || in.Imm != 0 {
		t.Errorf("empty offset: rs=%s imm=%d", in.Rs, in.Imm)
	}
}

func TestShiftEncoding(t *testing.T) {
	prog := assemble(t, "main:\n    sll $t0, $t1, 31\n    trap 5\n")
	in := vm.Decode(word(t, prog.Image, 0))
	if in.Rd != vm.T0 || in.Rt != vm.T1 || in.Shamt != 31 || in.Rs != vm.Zero {
		t.Errorf("sll fields: rd=%s rt=%s rs=%s shamt=%d", in.Rd, in.Rt, in.Rs, in.Shamt)
	}
}

func TestQuotedStrings(t *testing.T) {
	prog := assemble(t, `
main:
    .ascii "a b"
    .ascii "x#y"
    trap 5
`)
	if !bytes.Equal(prog.Image[0:3], []byte("a b")) {
		t.Errorf("spaces inside quotes: % x", prog.Image[0:3])
	}
	if !bytes.Equal(prog.Image[3:6], []byte("x#y")) {
		t.Errorf("hash inside quotes: % x", prog.Image[3:6])
	}
}

func TestCommaAndCommentTokenizing(t *testing.T) {
	prog := assemble(t, "main:\n    add $t0,$t1,$t2 # trailing comment\n    trap 5\n")
	in := vm.Decode(word(t, prog.Image, 0))
	if in.Rd != vm.T0 || in.Rs != vm.T1 || in.Rt != vm.T2 {
		t.Errorf("fields: rd=%s rs=%s rt=%s", in.Rd, in.Rs, in.Rt)
	}
}

var errTests = []struct {
	name string
	src  string
	want string
}{
	{"unknown instruction", "main:\n    bogus $t0\n", "unknown instruction"},
	{"operand count", "main:\n    addi $t0, $zero\n", "expects 3 operands, got 2"},
	{"bad memory operand", "main:\n    lw $t0, 8$sp\n", "invalid memory operand"},
	{"undefined label", "main:\n    beq $t0, $t1, nowhere\n", "undefined label"},
	{"unknown directive", "main:\n    .quux 1\n", "unknown directive"},
	{"bad immediate", "main:\n    addi $t0, $zero, 12q\n", "invalid immediate"},
	{"label redefinition", "a:\n    trap 5\na:\n    trap 5\n", "redefined"},
	{"shift out of range", "main:\n    sll $t0, $t1, 32\n", "out of range"},
}

func TestErrors(t *testing.T) {
	for _, tc := range errTests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := asm.Assemble("test", strings.NewReader(tc.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestErrorsAccumulateWithLineNumbers(t *testing.T) {
	_, err := asm.Assemble("test", strings.NewReader("bogus $t0\nworse $t1\n"))
	var list asm.ErrList
	if !errors.As(err, &list) {
		t.Fatalf("got %T, want ErrList", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d errors, want 2", len(list))
	}
	if !strings.Contains(list[0].Error(), "test:1:") {
		t.Errorf("first error %q lacks line tag", list[0])
	}
	if !strings.Contains(list[1].Error(), "test:2:") {
		t.Errorf("second error %q lacks line tag", list[1])
	}
}

func TestBadRegisterFailsFast(t *testing.T) {
	_, err := asm.Assemble("test", strings.NewReader("main:\n    add $t0, $q1, $t2\n"))
	var bad vm.BadRegisterError
	if !errors.As(err, &bad) {
		t.Fatalf("got %v, want BadRegisterError", err)
	}
}

func TestLoneNullAsciiz(t *testing.T) {
	prog := assemble(t, "main:\n    .asciiz\n    trap 5\n")
	if prog.Image[0] != 0 {
		t.Errorf("bare .asciiz should emit a NUL, got %#02x", prog.Image[0])
	}
	if len(prog.Image) != 5 {
		t.Errorf("image size = %d, want 5", len(prog.Image))
	}
}
