package types

import (
	"errors"
	"testing"

	errorsmod "cosmossdk.io/errors"
	"github.com/stretchr/testify/require"
)

func TestLedgerFailure_KeepsCauseAndCode(t *testing.T) {
	cause := errors.New("insufficient funds")
	err := LedgerFailure(cause)

	require.ErrorIs(t, err, ErrLedgerFailure)
	require.ErrorIs(t, err, cause)
	require.Equal(t, cause, Cause(err))

	codespace, code, log := errorsmod.ABCIInfo(err, false)
	require.Equal(t, ModuleName, codespace)
	require.Equal(t, uint32(9), code)
	require.Contains(t, log, "insufficient funds")

	require.NoError(t, LedgerFailure(nil))
}

func TestRandomnessFailure_Code(t *testing.T) {
	err := RandomnessFailure(errors.New("oracle down"))
	require.ErrorIs(t, err, ErrRandomnessFailure)
	require.False(t, errors.Is(err, ErrLedgerFailure))
	_, code, _ := errorsmod.ABCIInfo(err, false)
	require.Equal(t, uint32(10), code)
}
