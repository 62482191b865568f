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

package asm

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/ge42dal/MIPS/vm"
	"github.com/pkg/errors"
)

// ErrList is the accumulated list of assembly errors, one entry per
// offending source line.
type ErrList []error

func (e ErrList) Error() string {
	switch len(e) {
	case 0:
		return "no errors"
	case 1:
		return e[0].Error()
	}
	var b strings.Builder
	for i, err := range e {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Program is the output of Assemble: the contiguous byte image in source
// order, the entry address bound to the "main" label (0 if absent), the
// lowered line list and the label table. The last two exist for the
// debugger's benefit.
type Program struct {
	Image  []byte
	Entry  uint32
	Lines  []Line
	Labels map[string]uint32
}

// Assemble compiles assembly read from the supplied io.Reader.
//
// The name parameter is used only in error messages to name the source
// of the error. If the io.Reader is a file, name should be the file
// name.
//
// Assembly errors do not stop translation: the whole source is processed
// and the errors come back together as an ErrList. A register mnemonic
// that is not in the register table fails fast with the underlying
// vm.BadRegisterError instead.
func Assemble(name string, r io.Reader) (*Program, error) {
	p := newParser(name)
	if err := p.parse(r); err != nil {
		return nil, err
	}
	img, err := p.encode()
	if err != nil {
		return nil, err
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return &Program{Image: img, Entry: p.entry, Lines: p.lines, Labels: p.labels}, nil
}

// encode is the second pass: directives emit raw bytes, instructions
// encode to 4 little-endian bytes each.
func (p *parser) encode() ([]byte, error) {
	img := make([]byte, 0, p.pc)
	for i := range p.lines {
		ln := &p.lines[i]
		if ln.Directive {
			img = append(img, p.data(ln)...)
			continue
		}
		in, err := p.instruction(ln)
		if err != nil {
			return nil, err
		}
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], in.Encode())
		img = append(img, b[:]...)
	}
	return img, nil
}

func (p *parser) data(ln *Line) []byte {
	var out []byte
	switch ln.Mnemonic {
	case ".byte":
		for _, op := range ln.Operands {
			out = append(out, uint8(p.immediate(ln, op)))
		}
	case ".half":
		for _, op := range ln.Operands {
			v := uint16(p.immediate(ln, op))
			out = append(out, uint8(v), uint8(v>>8))
		}
	case ".word":
		for _, op := range ln.Operands {
			v := p.immediate(ln, op)
			out = append(out, uint8(v), uint8(v>>8), uint8(v>>16), uint8(v>>24))
		}
	case ".ascii":
		if len(ln.Operands) > 0 {
			out = append(out, unquote(ln.Operands[0])...)
		}
	case ".asciiz":
		if len(ln.Operands) > 0 {
			out = append(out, unquote(ln.Operands[0])...)
		}
		out = append(out, 0)
	case ".space":
		out = make([]byte, ln.Size)
	}
	return out
}

var operandCounts = map[vm.Category]int{
	vm.ArithLogic:    3,
	vm.Shift:         3,
	vm.ShiftReg:      3,
	vm.DivMult:       2,
	vm.JumpReg:       1,
	vm.MoveFrom:      1,
	vm.MoveTo:        1,
	vm.ArithLogicImm: 3,
	vm.LoadImm:       2,
	vm.Branch:        3,
	vm.BranchZero:    2,
	vm.LoadStore:     2,
	vm.Jump:          1,
	vm.Trap:          1,
}

// instruction builds the vm.Instruction for a lowered line, filling the
// operand fields the category calls for. Unknown mnemonics and malformed
// operands are accumulated; a bad register aborts.
func (p *parser) instruction(ln *Line) (vm.Instruction, error) {
	in, ok := vm.Lookup(ln.Mnemonic)
	if !ok {
		p.errorf(ln.num, "unknown instruction %s", ln.Mnemonic)
		return in, nil
	}
	ops := ln.Operands
	if want := operandCounts[in.Category]; len(ops) != want {
		p.errorf(ln.num, "%s expects %d operands, got %d", ln.Mnemonic, want, len(ops))
		return in, nil
	}
	var badReg error
	reg := func(s string) vm.Reg {
		r, err := vm.ParseReg(s)
		if err != nil && badReg == nil {
			badReg = errors.Wrapf(err, "%s:%d", p.name, ln.num)
		}
		return r
	}
	switch in.Category {
	case vm.ArithLogic:
		in.Rd, in.Rs, in.Rt = reg(ops[0]), reg(ops[1]), reg(ops[2])
	case vm.Shift:
		in.Rd, in.Rt = reg(ops[0]), reg(ops[1])
		n := p.immediate(ln, ops[2])
		if n > 31 {
			p.errorf(ln.num, "shift amount %d out of range", n)
			n = 0
		}
		in.Shamt = uint8(n)
	case vm.ShiftReg:
		in.Rd, in.Rt, in.Rs = reg(ops[0]), reg(ops[1]), reg(ops[2])
	case vm.DivMult:
		in.Rs, in.Rt = reg(ops[0]), reg(ops[1])
	case vm.JumpReg:
		in.Rs = reg(ops[0])
	case vm.MoveFrom:
		in.Rd = reg(ops[0])
	case vm.MoveTo:
		in.Rs = reg(ops[0])
	case vm.ArithLogicImm:
		in.Rt, in.Rs = reg(ops[0]), reg(ops[1])
		in.Imm = uint16(p.immediate(ln, ops[2]))
	case vm.LoadImm:
		in.Rt = reg(ops[0])
		in.Imm = uint16(p.immediate(ln, ops[1]))
	case vm.Branch:
		in.Rs, in.Rt = reg(ops[0]), reg(ops[1])
		in.Imm = branchOffset(p.address(ln, ops[2]), ln.Addr)
	case vm.BranchZero:
		in.Rs = reg(ops[0])
		in.Imm = branchOffset(p.address(ln, ops[1]), ln.Addr)
	case vm.LoadStore:
		in.Rt = reg(ops[0])
		off, base, ok := splitMemOperand(ops[1])
		if !ok {
			p.errorf(ln.num, "invalid memory operand %q", ops[1])
			break
		}
		in.Rs = reg(base)
		in.Imm = uint16(p.immediate(ln, off))
	case vm.Jump:
		in.Target = p.immediate(ln, ops[0]) >> 2
	case vm.Trap:
		in.Imm = uint16(p.immediate(ln, ops[0]))
	}
	return in, badReg
}

// branchOffset is the PC-relative word offset stored in a branch
// immediate, computed from the branch's own address.
func branchOffset(target, pc uint32) uint16 {
	return uint16(int32(target-pc-4) >> 2)
}

// splitMemOperand splits the "imm(reg)" form of a memory operand.
func splitMemOperand(s string) (off, base string, ok bool) {
	i := strings.IndexByte(s, '(')
	if i < 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	return s[:i], s[i+1 : len(s)-1], true
}
