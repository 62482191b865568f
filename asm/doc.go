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

// Package asm implements a two-pass MIPS32 assembler.
//
// Source syntax, one statement per line:
//
//	line      := [label ':'] (instr | directive)? comment?
//	instr     := mnemonic operand (',' operand)*
//	operand   := register | immediate | label | imm '(' register ')'
//	directive := '.' name arg (',' arg)*
//	comment   := '#' anything
//
// Commas terminate tokens; "8($sp)" is a single token. String arguments
// to .ascii and .asciiz are double-quoted and taken verbatim (no escape
// sequences).
//
// Supported directives and their sizes:
//
//	.byte a, b, ...     one byte per argument
//	.half a, b, ...     two bytes per argument, little-endian
//	.word a, b, ...     four bytes per argument, little-endian
//	.ascii "s"          the string bytes, no terminator
//	.asciiz "s"         the string bytes plus a NUL
//	.space n            n zero bytes
//
// The first pass lays out lines and binds labels, so forward references
// cost nothing; the second pass encodes. A line whose label is "main"
// sets the program entry address.
//
// Immediate operands resolve in order: known label, 0x-prefixed hex
// literal, decimal literal (possibly negative, truncated to the low
// 16 bits for imm16 fields).
//
// Assembly errors accumulate with the source line that caused them and
// come back as a single ErrList; a bad register mnemonic aborts encoding
// immediately instead.
package asm
