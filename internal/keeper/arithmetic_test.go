package keeper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"onchainpoker/escrow/internal/types"
)

func TestAddUint64Checked(t *testing.T) {
	got, err := addUint64Checked(1, 2, "x")
	require.NoError(t, err)
	require.Equal(t, uint64(3), got)

	got, err = addUint64Checked(^uint64(0)-1, 1, "x")
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), got)

	_, err = addUint64Checked(^uint64(0)-9, 100, "pot")
	require.ErrorIs(t, err, types.ErrOverflow)
}

func TestSubUint64Checked(t *testing.T) {
	got, err := subUint64Checked(5, 5, "x")
	require.NoError(t, err)
	require.Zero(t, got)

	_, err = subUint64Checked(4, 5, "x")
	require.ErrorIs(t, err, types.ErrOverflow)
}

func TestSplitPot(t *testing.T) {
	cases := []struct {
		pot  uint64
		n    int
		want []uint64
	}{
		{2000, 1, []uint64{2000}},
		{2001, 2, []uint64{1001, 1000}},
		{10, 3, []uint64{4, 3, 3}},
		{^uint64(0), 2, []uint64{1 << 63, 1<<63 - 1}},
	}
	for _, tc := range cases {
		got, err := splitPot(tc.pot, tc.n)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)

		var sum uint64
		for _, v := range got {
			sum += v
		}
		require.Equal(t, tc.pot, sum)
	}

	_, err := splitPot(10, 0)
	require.ErrorIs(t, err, types.ErrEmptyWinners)
}
