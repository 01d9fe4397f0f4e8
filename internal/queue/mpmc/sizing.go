package mpmc

import "github.com/pbnjay/memory"

// Single queue may claim at most 1/64th of free system memory
const maxFreeMemoryFraction uint64 = 64

// Picks a power of two capacity within [minimum, maximum] that keeps itemSize*capacity
// under a fraction of currently free system memory
func CapacityFor(itemSize, minimum, maximum int) (capacity uint64) {
	capacity = uint64(prevPowerOfTwo(maximum))
	floor := uint64(nextPowerOfTwo(minimum))
	if floor < 2 {
		floor = 2
	}
	if capacity < floor {
		capacity = floor
		return
	}

	availMem := memory.FreeMemory()
	if availMem == 0 || itemSize <= 0 {
		// Unknown free memory, use configured maximum
		return
	}

	budget := availMem / maxFreeMemoryFraction
	for capacity > floor && capacity*uint64(itemSize) > budget {
		capacity >>= 1
	}
	return
}

func nextPowerOfTwo(start int) (next int) {
	if start <= 1 {
		next = 1
		return
	}
	start--
	start |= start >> 1
	start |= start >> 2
	start |= start >> 4
	start |= start >> 8
	start |= start >> 16
	start |= start >> 32
	next = start + 1
	return
}

// Largest power of two that is <= start
func prevPowerOfTwo(start int) (prev int) {
	if start <= 0 {
		return
	}
	prev = nextPowerOfTwo(start)
	if prev > start {
		prev >>= 1
	}
	return
}
