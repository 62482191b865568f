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
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Line is a lowered source line: one instruction or directive, placed at
// Addr and sized by the first pass. Lines that carry only a label or a
// comment are not lowered.
type Line struct {
	Label     string
	Mnemonic  string
	Operands  []string
	Directive bool
	Addr      uint32
	Size      uint32

	num int // 1-based source line number
}

// Text renders the line the way the debugger displays it.
func (l *Line) Text() string {
	if len(l.Operands) == 0 {
		return l.Mnemonic
	}
	return l.Mnemonic + " " + strings.Join(l.Operands, ", ")
}

type parser struct {
	name   string
	lines  []Line
	labels map[string]uint32
	entry  uint32
	pc     uint32
	errs   ErrList
}

func newParser(name string) *parser {
	return &parser{name: name, labels: make(map[string]uint32)}
}

func (p *parser) errorf(num int, format string, args ...interface{}) {
	args = append([]interface{}{p.name, num}, args...)
	p.errs = append(p.errs, errors.Errorf("%s:%d: "+format, args...))
}

// tokenize splits a source line on whitespace and commas, keeping
// double-quoted strings together and dropping everything after an
// unquoted '#'.
func tokenize(s string) []string {
	var toks []string
	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == '#':
			return toks
		case c == ' ' || c == '\t' || c == '\r' || c == ',':
			i++
		case c == '"':
			j := i + 1
			for j < len(s) && s[j] != '"' {
				j++
			}
			if j < len(s) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		default:
			j := i
			for j < len(s) && s[j] != ' ' && s[j] != '\t' && s[j] != '\r' && s[j] != ',' && s[j] != '#' {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		}
	}
	return toks
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// parse is the first pass: it lowers lines, computes their sizes and
// binds labels to addresses without evaluating operands.
func (p *parser) parse(r io.Reader) error {
	s := bufio.NewScanner(r)
	num := 0
	for s.Scan() {
		num++
		toks := tokenize(s.Text())
		if len(toks) == 0 {
			continue
		}
		var ln Line
		ln.num = num
		if t := toks[0]; strings.HasSuffix(t, ":") {
			ln.Label = t[:len(t)-1]
			toks = toks[1:]
			switch prev, bound := p.labels[ln.Label]; {
			case ln.Label == "":
				p.errorf(num, "empty label name")
			case bound:
				p.errorf(num, "label %s redefined (first bound at 0x%X)", ln.Label, prev)
			default:
				p.labels[ln.Label] = p.pc
				if ln.Label == "main" {
					p.entry = p.pc
				}
			}
		}
		if len(toks) == 0 {
			continue
		}
		ln.Mnemonic = toks[0]
		ln.Operands = toks[1:]
		ln.Directive = strings.HasPrefix(ln.Mnemonic, ".")
		ln.Addr = p.pc
		ln.Size = p.sizeOf(&ln)
		p.pc += ln.Size
		p.lines = append(p.lines, ln)
	}
	return errors.Wrap(s.Err(), "read source")
}

// sizeOf computes the first-pass size of a line. It must agree exactly
// with what the second pass emits, or labels drift from the image.
func (p *parser) sizeOf(ln *Line) uint32 {
	if !ln.Directive {
		return 4
	}
	switch ln.Mnemonic {
	case ".byte":
		return uint32(len(ln.Operands))
	case ".half":
		return uint32(2 * len(ln.Operands))
	case ".word":
		return uint32(4 * len(ln.Operands))
	case ".ascii":
		if len(ln.Operands) == 0 {
			return 0
		}
		return uint32(len(unquote(ln.Operands[0])))
	case ".asciiz":
		if len(ln.Operands) == 0 {
			return 1
		}
		return uint32(len(unquote(ln.Operands[0])) + 1)
	case ".space":
		if len(ln.Operands) == 0 {
			return 0
		}
		n, err := strconv.ParseUint(ln.Operands[0], 0, 32)
		if err != nil {
			p.errorf(ln.num, "invalid .space size %q", ln.Operands[0])
			return 0
		}
		return uint32(n)
	default:
		p.errorf(ln.num, "unknown directive %s", ln.Mnemonic)
		return 0
	}
}

// immediate resolves op as a known label, a 0x hex literal or a decimal
// literal. Unresolvable operands yield 0 with an error recorded.
func (p *parser) immediate(ln *Line, op string) uint32 {
	if op == "" {
		return 0
	}
	if a, ok := p.labels[op]; ok {
		return a
	}
	if strings.HasPrefix(op, "0x") || strings.HasPrefix(op, "0X") {
		n, err := strconv.ParseUint(op[2:], 16, 32)
		if err != nil {
			p.errorf(ln.num, "invalid immediate %q", op)
			return 0
		}
		return uint32(n)
	}
	n, err := strconv.ParseInt(op, 10, 64)
	if err != nil || n > int64(^uint32(0)) || n < -1<<31 {
		if c := op[0]; c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			p.errorf(ln.num, "undefined label %s", op)
		} else {
			p.errorf(ln.num, "invalid immediate %q", op)
		}
		return 0
	}
	return uint32(n)
}

// address resolves a label operand. Branch targets must be bound
// labels; unknown ones yield 0 with an error recorded.
func (p *parser) address(ln *Line, op string) uint32 {
	if a, ok := p.labels[op]; ok {
		return a
	}
	p.errorf(ln.num, "undefined label %s", op)
	return 0
}
