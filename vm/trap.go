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

import (
	"fmt"

	"github.com/pkg/errors"
)

// Trap syscall numbers. This MIPS dialect uses a single trap instruction
// whose immediate selects the service.
const (
	TrapPrintInt = iota
	TrapPrintChar
	TrapPrintString
	TrapReadInt
	TrapReadChar
	TrapExit
)

// trap dispatches a syscall. Reads block on the configured input stream;
// this is the interpreter's only blocking point. Unknown trap numbers
// are ignored.
func (c *CPU) trap(code uint16) error {
	s := c.state
	switch code {
	case TrapPrintInt:
		if _, err := fmt.Fprintf(c.out, "%d", int32(s.Reg(A0))); err != nil {
			return errors.Wrap(err, "print_int")
		}
	case TrapPrintChar:
		if _, err := c.out.Write([]byte{uint8(s.Reg(A0))}); err != nil {
			return errors.Wrap(err, "print_char")
		}
	case TrapPrintString:
		a := s.Reg(A0)
		for {
			b, _ := s.Mem.LoadByte(a)
			if b == 0 {
				break
			}
			if _, err := c.out.Write([]byte{b}); err != nil {
				return errors.Wrap(err, "print_string")
			}
			a++
		}
	case TrapReadInt:
		var n int64
		if _, err := fmt.Fscan(c.in, &n); err != nil {
			return errors.Wrap(err, "read_int")
		}
		s.SetReg(V0, uint32(n))
	case TrapReadChar:
		b, err := c.in.ReadByte()
		if err != nil {
			return errors.Wrap(err, "read_char")
		}
		s.SetReg(V0, uint32(b))
	case TrapExit:
		c.halted = true
	}
	return nil
}
