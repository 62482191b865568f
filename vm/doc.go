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

// Package vm implements a MIPS32 machine model and interpreter.
//
// The model is deliberately simple: a sparse 4 GiB little-endian memory,
// 32 general purpose registers plus PC, HI and LO, and a fetch-decode-execute
// loop dispatching on an instruction category tag. There are no delay slots,
// no exceptions and no coprocessors. System calls use the single `trap`
// instruction of this MIPS dialect; their I/O streams are pluggable through
// CPU options so that embedding programs and tests can substitute in-memory
// buffers for the standard streams.
//
// A program typically reaches the CPU through the companion asm package,
// or through an Image read back from the on-disk binary object format.
package vm
