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

// PageSize is the allocation granularity of Memory.
const PageSize = 4096

const maxAddr = ^uint32(0)

// Memory is a sparse byte-addressable view of the full 32-bit address
// space. Pages are allocated on first write and zero-filled once; a read
// from a page that was never written returns 0 without allocating.
// Multi-byte accesses are little-endian and need not be aligned.
type Memory struct {
	pages map[uint32]*[PageSize]byte
}

// NewMemory returns an empty Memory. No pages are allocated up front.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint32]*[PageSize]byte)}
}

// OutOfBoundsError reports an access whose final byte would fall past the
// top of the 32-bit address space.
type OutOfBoundsError struct {
	Addr uint32 // first byte of the access
	Size int    // access width in bytes
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("out of bounds %d-byte access at 0x%08X", e.Size, e.Addr)
}

func (m *Memory) page(a uint32) *[PageSize]byte {
	return m.pages[a>>12]
}

func (m *Memory) grow(a uint32) *[PageSize]byte {
	p := m.pages[a>>12]
	if p == nil {
		p = new([PageSize]byte)
		m.pages[a>>12] = p
	}
	return p
}

// Mapped reports whether the page holding a has been allocated.
func (m *Memory) Mapped(a uint32) bool {
	return m.page(a) != nil
}

// LoadByte reads the byte at a. A single byte access cannot leave the
// address space; the returned error is always nil.
func (m *Memory) LoadByte(a uint32) (uint8, error) {
	if p := m.page(a); p != nil {
		return p[a&(PageSize-1)], nil
	}
	return 0, nil
}

// LoadHalf reads the 16-bit value at a, little-endian.
func (m *Memory) LoadHalf(a uint32) (uint16, error) {
	if a > maxAddr-1 {
		return 0, &OutOfBoundsError{a, 2}
	}
	lo, _ := m.LoadByte(a)
	hi, _ := m.LoadByte(a + 1)
	return uint16(lo) | uint16(hi)<<8, nil
}

// LoadWord reads the 32-bit value at a, little-endian.
func (m *Memory) LoadWord(a uint32) (uint32, error) {
	if a > maxAddr-3 {
		return 0, &OutOfBoundsError{a, 4}
	}
	var v uint32
	for k := uint32(0); k < 4; k++ {
		b, _ := m.LoadByte(a + k)
		v |= uint32(b) << (8 * k)
	}
	return v, nil
}

// StoreByte writes the byte at a, allocating its page on demand.
// The returned error is always nil.
func (m *Memory) StoreByte(a uint32, v uint8) error {
	m.grow(a)[a&(PageSize-1)] = v
	return nil
}

// StoreHalf writes the 16-bit value at a, little-endian.
func (m *Memory) StoreHalf(a uint32, v uint16) error {
	if a > maxAddr-1 {
		return &OutOfBoundsError{a, 2}
	}
	m.StoreByte(a, uint8(v))
	m.StoreByte(a+1, uint8(v>>8))
	return nil
}

// StoreWord writes the 32-bit value at a, little-endian.
func (m *Memory) StoreWord(a uint32, v uint32) error {
	if a > maxAddr-3 {
		return &OutOfBoundsError{a, 4}
	}
	for k := uint32(0); k < 4; k++ {
		m.StoreByte(a+k, uint8(v>>(8*k)))
	}
	return nil
}

// LoadImage bulk-copies data into memory starting at start, equivalent to
// a sequence of StoreByte calls.
func (m *Memory) LoadImage(data []byte, start uint32) error {
	if len(data) > 0 && uint64(start)+uint64(len(data))-1 > uint64(maxAddr) {
		return &OutOfBoundsError{start, len(data)}
	}
	for i, b := range data {
		m.StoreByte(start+uint32(i), b)
	}
	return nil
}
