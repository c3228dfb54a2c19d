package cpu

import (
	"encoding/binary"
)

const (
	PAGE_BITS  = 16
	PAGE_SIZE  = 1 << PAGE_BITS
	PAGE_MASK  = PAGE_SIZE - 1
	PAGE_COUNT = 1 << (32 - PAGE_BITS)
)

type page [PAGE_SIZE]byte

// Memory is the flat 4 GiB byte-addressable store of one machine.
// Pages are allocated on first write; untouched memory reads as zero.
// All addresses wrap modulo 2^32.
type Memory struct {
	pages [PAGE_COUNT]*page
}

// page returns the page holding addr, allocating it if needed.
func (mem *Memory) page(addr uint32) *page {
	pg := mem.pages[addr>>PAGE_BITS]
	if pg == nil {
		pg = &page{}
		mem.pages[addr>>PAGE_BITS] = pg
	}
	return pg
}

// Pages returns the number of allocated pages.
func (mem *Memory) Pages() (count int) {
	for _, pg := range mem.pages {
		if pg != nil {
			count++
		}
	}
	return
}

// Reset zeros all of memory.
func (mem *Memory) Reset() {
	clear(mem.pages[:])
}

// Load8 reads a byte.
func (mem *Memory) Load8(addr uint32) uint8 {
	pg := mem.pages[addr>>PAGE_BITS]
	if pg == nil {
		return 0
	}
	return pg[addr&PAGE_MASK]
}

// Store8 writes a byte.
func (mem *Memory) Store8(addr uint32, value uint8) {
	if value == 0 && mem.pages[addr>>PAGE_BITS] == nil {
		return
	}
	mem.page(addr)[addr&PAGE_MASK] = value
}

// Load32 reads a little-endian word. The four addresses wrap independently.
func (mem *Memory) Load32(addr uint32) uint32 {
	var buf [4]byte
	mem.Read(addr, buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

// Store32 writes a little-endian word.
func (mem *Memory) Store32(addr uint32, value uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	mem.Write(addr, buf[:])
}

// Read fills buf from consecutive addresses starting at addr.
func (mem *Memory) Read(addr uint32, buf []byte) {
	for len(buf) > 0 {
		offset := addr & PAGE_MASK
		n := min(int(PAGE_SIZE-offset), len(buf))
		pg := mem.pages[addr>>PAGE_BITS]
		if pg == nil {
			clear(buf[:n])
		} else {
			copy(buf[:n], pg[offset:])
		}
		buf = buf[n:]
		addr += uint32(n)
	}
}

// Write copies data to consecutive addresses starting at addr.
func (mem *Memory) Write(addr uint32, data []byte) {
	for len(data) > 0 {
		offset := addr & PAGE_MASK
		n := min(int(PAGE_SIZE-offset), len(data))
		copy(mem.page(addr)[offset:], data[:n])
		data = data[n:]
		addr += uint32(n)
	}
}
