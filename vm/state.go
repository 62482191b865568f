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

import "fmt"

// State is the architectural state of the machine: the register file,
// the PC, HI and LO, and the memory store. Everything starts at zero.
type State struct {
	Mem  *Memory
	regs [NumRegs]uint32
	pc   uint32
	hi   uint32
	lo   uint32
}

// NewState returns a zeroed machine state with an empty memory.
func NewState() *State {
	return &State{Mem: NewMemory()}
}

// Reg returns the value of register r. Reading Zero always yields 0.
// An index outside the register file panics with a BadRegisterError;
// CPU.Step converts the panic into a returned error.
func (s *State) Reg(r Reg) uint32 {
	if r >= NumRegs {
		panic(BadRegisterError(fmt.Sprintf("$%d", r)))
	}
	if r == Zero {
		return 0
	}
	return s.regs[r]
}

// SetReg sets register r to v. Writes to Zero are silently discarded.
func (s *State) SetReg(r Reg, v uint32) {
	if r >= NumRegs {
		panic(BadRegisterError(fmt.Sprintf("$%d", r)))
	}
	if r != Zero {
		s.regs[r] = v
	}
}

// PC returns the program counter.
func (s *State) PC() uint32 { return s.pc }

// SetPC sets the program counter.
func (s *State) SetPC(v uint32) { s.pc = v }

// HI returns the HI register.
func (s *State) HI() uint32 { return s.hi }

// SetHI sets the HI register.
func (s *State) SetHI(v uint32) { s.hi = v }

// LO returns the LO register.
func (s *State) LO() uint32 { return s.lo }

// SetLO sets the LO register.
func (s *State) SetLO(v uint32) { s.lo = v }
