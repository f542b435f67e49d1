package keeper

import "onchainpoker/escrow/internal/types"

func addUint64Checked(a uint64, b uint64, field string) (uint64, error) {
	if a > ^uint64(0)-b {
		return 0, types.ErrOverflow.Wrapf("%s overflows uint64", field)
	}
	return a + b, nil
}

func subUint64Checked(a uint64, b uint64, field string) (uint64, error) {
	if b > a {
		return 0, types.ErrOverflow.Wrapf("%s underflows", field)
	}
	return a - b, nil
}

// splitPot divides pot evenly across n winners. The first winner also takes
// the remainder, so the shares always sum to pot.
func splitPot(pot uint64, n int) ([]uint64, error) {
	if n <= 0 {
		return nil, types.ErrEmptyWinners
	}
	share := pot / uint64(n)
	rem := pot % uint64(n)
	out := make([]uint64, n)
	for i := range out {
		out[i] = share
	}
	out[0] += rem
	return out, nil
}
