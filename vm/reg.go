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

// Reg is a 5-bit general purpose register index.
type Reg uint8

// Register indices with their conventional MIPS names.
const (
	Zero Reg = iota // hard-wired zero
	AT
	V0
	V1
	A0
	A1
	A2
	A3
	T0
	T1
	T2
	T3
	T4
	T5
	T6
	T7
	S0
	S1
	S2
	S3
	S4
	S5
	S6
	S7
	T8
	T9
	K0
	K1
	GP
	SP
	FP // aka $s8
	RA

	NumRegs = 32
)

var regNames = [NumRegs]string{
	"$zero", "$at", "$v0", "$v1", "$a0", "$a1", "$a2", "$a3",
	"$t0", "$t1", "$t2", "$t3", "$t4", "$t5", "$t6", "$t7",
	"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7",
	"$t8", "$t9", "$k0", "$k1", "$gp", "$sp", "$fp", "$ra",
}

var regIndex = make(map[string]Reg)

func init() {
	for i, n := range regNames {
		regIndex[n] = Reg(i)
	}
	regIndex["$s8"] = FP
}

func (r Reg) String() string {
	if r < NumRegs {
		return regNames[r]
	}
	return "$unknown"
}

// BadRegisterError reports a register mnemonic or index outside the
// architectural register file.
type BadRegisterError string

func (e BadRegisterError) Error() string {
	return "bad register " + string(e)
}

// ParseReg resolves a register mnemonic like "$t0" to its index.
// Both "$fp" and "$s8" name register 30.
func ParseReg(name string) (Reg, error) {
	if r, ok := regIndex[name]; ok {
		return r, nil
	}
	return 0, BadRegisterError(name)
}
