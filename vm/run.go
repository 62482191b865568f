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

package vm

import "github.com/pkg/errors"

func signExt16(v uint16) uint32 { return uint32(int32(int16(v))) }
func signExt8(v uint8) uint32   { return uint32(int32(int8(v))) }

// Step runs a single fetch-decode-execute cycle. A zero word is a NOP:
// the PC advances by 4 and nothing else happens. Control-transfer
// categories (Jump, JumpReg, Branch, BranchZero) own the PC update;
// everything else advances by 4 after executing. Step is a no-op once
// the CPU has halted.
func (c *CPU) Step() (err error) {
	if c.halted {
		return nil
	}
	defer func() {
		if e := recover(); e != nil {
			if bad, ok := e.(BadRegisterError); ok {
				err = bad
			} else {
				panic(e)
			}
		}
	}()
	pc := c.state.PC()
	w, err := c.state.Mem.LoadWord(pc)
	if err != nil {
		return errors.Wrapf(err, "fetch at 0x%08X", pc)
	}
	if w == 0 {
		c.state.SetPC(pc + 4)
		return nil
	}
	in := Decode(w)
	if err = c.execute(&in); err != nil {
		return errors.Wrapf(err, "%s at 0x%08X", in.Name, pc)
	}
	switch in.Category {
	case Jump, JumpReg, Branch, BranchZero:
	default:
		c.state.SetPC(c.state.PC() + 4)
	}
	return nil
}

// Run repeats Step until the program halts or a step fails.
func (c *CPU) Run() error {
	for !c.halted {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (c *CPU) execute(in *Instruction) error {
	s := c.state
	switch in.Category {
	case ArithLogic:
		rs, rt := s.Reg(in.Rs), s.Reg(in.Rt)
		var v uint32
		switch in.Funct {
		case 0b100000, 0b100001: // add, addu: same bit pattern, no overflow trap
			v = rs + rt
		case 0b100010, 0b100011: // sub, subu
			v = rs - rt
		case 0b100100: // and
			v = rs & rt
		case 0b100101: // or
			v = rs | rt
		case 0b100110: // xor
			v = rs ^ rt
		case 0b100111: // nor
			v = ^(rs | rt)
		case 0b101010: // slt
			if int32(rs) < int32(rt) {
				v = 1
			}
		case 0b101011: // sltu
			if rs < rt {
				v = 1
			}
		}
		s.SetReg(in.Rd, v)
	case DivMult:
		rs, rt := s.Reg(in.Rs), s.Reg(in.Rt)
		switch in.Funct {
		case 0b011000: // mult
			p := int64(int32(rs)) * int64(int32(rt))
			s.SetLO(uint32(p))
			s.SetHI(uint32(uint64(p) >> 32))
		case 0b011001: // multu
			p := uint64(rs) * uint64(rt)
			s.SetLO(uint32(p))
			s.SetHI(uint32(p >> 32))
		case 0b011010: // div: division by zero leaves HI/LO untouched
			if rt != 0 {
				s.SetLO(uint32(int32(rs) / int32(rt)))
				s.SetHI(uint32(int32(rs) % int32(rt)))
			}
		case 0b011011: // divu
			if rt != 0 {
				s.SetLO(rs / rt)
				s.SetHI(rs % rt)
			}
		}
	case Shift:
		rt := s.Reg(in.Rt)
		n := in.Shamt & 0x1F
		var v uint32
		switch in.Funct {
		case 0b000000: // sll
			v = rt << n
		case 0b000010: // srl
			v = rt >> n
		case 0b000011: // sra
			v = uint32(int32(rt) >> n)
		}
		s.SetReg(in.Rd, v)
	case ShiftReg:
		rt := s.Reg(in.Rt)
		n := s.Reg(in.Rs) & 0x1F
		var v uint32
		switch in.Funct {
		case 0b000100: // sllv
			v = rt << n
		case 0b000110: // srlv
			v = rt >> n
		case 0b000111: // srav
			v = uint32(int32(rt) >> n)
		}
		s.SetReg(in.Rd, v)
	case JumpReg:
		rs := s.Reg(in.Rs)
		if in.Funct == 0b001001 { // jalr
			s.SetReg(RA, s.PC()+4)
		}
		s.SetPC(rs)
	case MoveFrom:
		if in.Funct == 0b010000 { // mfhi
			s.SetReg(in.Rd, s.HI())
		} else { // mflo
			s.SetReg(in.Rd, s.LO())
		}
	case MoveTo:
		if in.Funct == 0b010001 { // mthi
			s.SetHI(s.Reg(in.Rs))
		} else { // mtlo
			s.SetLO(s.Reg(in.Rs))
		}
	case ArithLogicImm:
		rs := s.Reg(in.Rs)
		var v uint32
		switch in.Opcode {
		case 0b001000, 0b001001: // addi, addiu
			v = rs + signExt16(in.Imm)
		case 0b001010: // slti
			if int32(rs) < int32(signExt16(in.Imm)) {
				v = 1
			}
		case 0b001011: // sltiu
			if rs < signExt16(in.Imm) {
				v = 1
			}
		case 0b001100: // andi
			v = rs & uint32(in.Imm)
		case 0b001101: // ori
			v = rs | uint32(in.Imm)
		case 0b001110: // xori
			v = rs ^ uint32(in.Imm)
		}
		s.SetReg(in.Rt, v)
	case LoadImm:
		rt := s.Reg(in.Rt)
		if in.Opcode == 0b011000 { // llo
			rt = rt&0xFFFF0000 | uint32(in.Imm)
		} else { // lhi
			rt = rt&0x0000FFFF | uint32(in.Imm)<<16
		}
		s.SetReg(in.Rt, rt)
	case Branch:
		taken := s.Reg(in.Rs) == s.Reg(in.Rt)
		if in.Opcode == 0b000101 { // bne
			taken = !taken
		}
		c.branch(taken, in.Imm)
	case BranchZero:
		rs := int32(s.Reg(in.Rs))
		taken := rs <= 0 // blez
		if in.Opcode == 0b000111 { // bgtz
			taken = rs > 0
		}
		c.branch(taken, in.Imm)
	case LoadStore:
		return c.loadStore(in)
	case Jump:
		if in.Opcode == 0b000011 { // jal
			s.SetReg(RA, s.PC()+4)
		}
		s.SetPC(in.Target << 2)
	case Trap:
		return c.trap(in.Imm)
	}
	return nil
}

func (c *CPU) branch(taken bool, imm uint16) {
	s := c.state
	if taken {
		s.SetPC(s.PC() + 4 + signExt16(imm)<<2)
	} else {
		s.SetPC(s.PC() + 4)
	}
}

func (c *CPU) loadStore(in *Instruction) error {
	s := c.state
	addr := s.Reg(in.Rs) + signExt16(in.Imm)
	switch in.Opcode {
	case 0b100000: // lb
		b, err := s.Mem.LoadByte(addr)
		if err != nil {
			return err
		}
		s.SetReg(in.Rt, signExt8(b))
	case 0b100001: // lh
		h, err := s.Mem.LoadHalf(addr)
		if err != nil {
			return err
		}
		s.SetReg(in.Rt, signExt16(h))
	case 0b100011: // lw
		w, err := s.Mem.LoadWord(addr)
		if err != nil {
			return err
		}
		s.SetReg(in.Rt, w)
	case 0b100100: // lbu
		b, err := s.Mem.LoadByte(addr)
		if err != nil {
			return err
		}
		s.SetReg(in.Rt, uint32(b))
	case 0b100101: // lhu
		h, err := s.Mem.LoadHalf(addr)
		if err != nil {
			return err
		}
		s.SetReg(in.Rt, uint32(h))
	case 0b101000: // sb
		return s.Mem.StoreByte(addr, uint8(s.Reg(in.Rt)))
	case 0b101001: // sh
		return s.Mem.StoreHalf(addr, uint16(s.Reg(in.Rt)))
	case 0b101011: // sw
		return s.Mem.StoreWord(addr, s.Reg(in.Rt))
	}
	return nil
}
