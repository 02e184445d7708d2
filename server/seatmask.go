package server

import (
	"fmt"
	"math/bits"

	"skat.com/server/protocol"
)

// SeatMask has bit i set when seat i is taken.
type SeatMask uint8

const fullSeatMask SeatMask = 1<<protocol.MaxSeats - 1

func (m SeatMask) Has(seat int) bool {
	if seat < 0 || seat >= protocol.MaxSeats {
		return false
	}
	return m&(1<<uint(seat)) != 0
}

func (m SeatMask) With(seat int) SeatMask {
	return m | 1<<uint(seat)
}

func (m SeatMask) Without(seat int) SeatMask {
	return m &^ (1 << uint(seat))
}

// LowestFree returns the lowest clear bit.
func (m SeatMask) LowestFree() (int, bool) {
	free := ^m & fullSeatMask
	if free == 0 {
		return protocol.NoSeat, false
	}
	return bits.TrailingZeros8(uint8(free)), true
}

func (m SeatMask) Count() int {
	return bits.OnesCount8(uint8(m & fullSeatMask))
}

func (m SeatMask) String() string {
	return fmt.Sprintf("0b%04b", uint8(m))
}
