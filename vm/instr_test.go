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

package vm_test

import (
	"testing"

	"github.com/ge42dal/MIPS/vm"
)

var allMnemonics = []string{
	"sll", "srl", "sra", "sllv", "srlv", "srav", "jr", "jalr",
	"mfhi", "mthi", "mflo", "mtlo", "mult", "multu", "div", "divu",
	"add", "addu", "sub", "subu", "and", "or", "xor", "nor", "slt", "sltu",
	"j", "jal", "beq", "bne", "blez", "bgtz",
	"addi", "addiu", "slti", "sltiu", "andi", "ori", "xori",
	"llo", "lhi", "trap",
	"lb", "lh", "lw", "lbu", "lhu", "sb", "sh", "sw",
}

// fill gives an instruction prototype distinctive operand bits for its
// format so a round trip exercises every field.
func fill(in vm.Instruction) vm.Instruction {
	switch in.Format {
	case vm.FormatR:
		in.Rs, in.Rt, in.Rd, in.Shamt = 1, 2, 3, 4
	case vm.FormatI:
		in.Rs, in.Rt, in.Imm = 5, 6, 0xABCD
	case vm.FormatJ:
		in.Target = 0x123456
	}
	return in
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, name := range allMnemonics {
		proto, ok := vm.Lookup(name)
		if !ok {
			t.Fatalf("%s: not in mnemonic table", name)
		}
		in := fill(proto)
		w := in.Encode()
		out := vm.Decode(w)
		if out.Name != name {
			t.Errorf("%s: decoded as %s (word %#08x)", name, out.Name, w)
			continue
		}
		if out.Category != proto.Category || out.Format != proto.Format {
			t.Errorf("%s: category/format mismatch", name)
		}
		if got := out.Encode(); got != w {
			t.Errorf("%s: encode(decode(%#08x)) = %#08x", name, w, got)
		}
	}
}

func TestDecodeFields(t *testing.T) {
	// addi $t0, $zero, 42
	const w = uint32(0b001000)<<26 | uint32(vm.T0)<<16 | 42
	in := vm.Decode(w)
	if in.Name != "addi" || in.Category != vm.ArithLogicImm || in.Format != vm.FormatI {
		t.Fatalf("decoded %s cat=%d fmt=%d", in.Name, in.Category, in.Format)
	}
	if in.Rs != vm.Zero || in.Rt != vm.T0 || in.Imm != 42 {
		t.Errorf("fields: rs=%d rt=%d imm=%d", in.Rs, in.Rt, in.Imm)
	}
}

func TestDecodeFormatByOpcode(t *testing.T) {
	for _, tc := range []struct {
		w    uint32
		want vm.Format
	}{
		{0x00000000, vm.FormatR},
		{2 << 26, vm.FormatJ},
		{3 << 26, vm.FormatJ},
		{8 << 26, vm.FormatI},
		{0x2B << 26, vm.FormatI},
	} {
		if got := vm.Decode(tc.w).Format; got != tc.want {
			t.Errorf("%#08x: format %d, want %d", tc.w, got, tc.want)
		}
	}
}

func TestDecodeUnknown(t *testing.T) {
	in := vm.Decode(0x3F << 26)
	if in.Name != "unknown" {
		t.Errorf("got %q", in.Name)
	}
	if _, ok := vm.Lookup("bogus"); ok {
		t.Error("Lookup accepted a bogus mnemonic")
	}
}

func TestEncodeMasksJumpTarget(t *testing.T) {
	in, _ := vm.Lookup("j")
	in.Target = 0xFFFFFFFF
	if w := in.Encode(); w != 2<<26|0x3FFFFFF {
		t.Errorf("jump target not masked: %#08x", w)
	}
}
