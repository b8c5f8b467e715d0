package aptx

// Fixed-point helpers shared by every stage of the codec. aptX is defined
// entirely in terms of 32- and 64-bit two's-complement integer arithmetic;
// there is no floating point anywhere in this package, and every shift and
// clip below must behave exactly as its C counterpart regardless of host
// signed-overflow semantics (Go's arithmetic shifts on signed integers give
// us that for free, but the rounding and clipping still need to be spelled
// out bit for bit).

// clipIntP2 saturates a to the signed range [-2^p, 2^p-1].
func clipIntP2(a int32, p uint) int32 {
	if (uint32(a)+(uint32(1)<<p))&^((uint32(2)<<p)-1) != 0 {
		return (a >> 31) ^ int32((1<<p)-1)
	}
	return a
}

// clip clamps a to [amin, amax].
func clip(a, amin, amax int32) int32 {
	switch {
	case a < amin:
		return amin
	case a > amax:
		return amax
	default:
		return a
	}
}

// signExtend sign-extends the low bits bits of val to a full int32.
func signExtend(val int32, bits uint) int32 {
	shift := 32 - bits
	return int32(uint32(val)<<shift) >> shift
}

// diffSign returns -1, 0 or +1 according to whether x is less than, equal
// to, or greater than y. This is the reference's DIFFSIGN macro; the zero
// case matters and must not be rounded away (see the note on strict sign
// semantics in the prediction stage).
func diffSign(x, y int32) int32 {
	switch {
	case x > y:
		return 1
	case x < y:
		return -1
	default:
		return 0
	}
}

// rshift32 is a rounding right shift of a 32-bit value: round to nearest,
// with exact midpoints rounded to even (round-half-up, corrected down by
// one at midpoints whose integer part is even). This
// specific bias correction is load-bearing for bit-exactness; see the
// design note on midpoint rounding.
func rshift32(value int32, shift uint) int32 {
	rounding := int32(1) << (shift - 1)
	mask := (int32(1) << (shift + 1)) - 1
	result := (value + rounding) >> shift
	if value&mask == rounding {
		result--
	}
	return result
}

// rshift64 is the 64-bit counterpart of rshift32.
func rshift64(value int64, shift uint) int64 {
	rounding := int64(1) << (shift - 1)
	mask := (int64(1) << (shift + 1)) - 1
	result := (value + rounding) >> shift
	if value&mask == rounding {
		result--
	}
	return result
}

// rshift32Clip24 rounds value right by shift and saturates to 24 bits.
func rshift32Clip24(value int32, shift uint) int32 {
	return clipIntP2(rshift32(value, shift), 23)
}

// rshift64Clip24 rounds value right by shift and saturates to 24 bits.
func rshift64Clip24(value int64, shift uint) int32 {
	return clipIntP2(int32(rshift64(value, shift)), 23)
}
