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
	"bufio"
	"io"
	"os"
)

// CPU drives fetch, decode and execute over a State. The syscall streams
// are injected at construction time; nothing in this package reads or
// writes a process-wide stream behind the caller's back.
type CPU struct {
	state  *State
	halted bool
	in     *bufio.Reader
	out    io.Writer
}

// Option configures a CPU.
type Option func(*CPU) error

// Input sets the stream backing the read syscalls (trap 3 and 4).
// The default is os.Stdin.
func Input(r io.Reader) Option {
	return func(c *CPU) error {
		c.in = bufio.NewReader(r)
		return nil
	}
}

// Output sets the stream backing the print syscalls (trap 0 to 2).
// The default is os.Stdout.
func Output(w io.Writer) Option {
	return func(c *CPU) error {
		c.out = w
		return nil
	}
}

// New returns a CPU with a fresh zeroed State.
func New(opts ...Option) (*CPU, error) {
	c := &CPU{
		state: NewState(),
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// State returns the machine state owned by the CPU.
func (c *CPU) State() *State { return c.state }

// Halted reports whether the program has executed an exit trap.
func (c *CPU) Halted() bool { return c.halted }

// Reset discards the machine state and clears the halted flag. The
// configured streams are kept.
func (c *CPU) Reset() {
	c.state = NewState()
	c.halted = false
}
