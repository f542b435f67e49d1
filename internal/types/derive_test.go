package types

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindTableAddress_DeterministicAndOffCurve(t *testing.T) {
	authority := Address{1, 2, 3}

	a1, n1, err := FindTableAddress(authority)
	require.NoError(t, err)
	a2, n2, err := FindTableAddress(authority)
	require.NoError(t, err)
	require.Equal(t, a1, a2)
	require.Equal(t, n1, n2)
	require.False(t, onCurve(a1[:]))

	again, err := CreateProgramAddress(TableSeeds(authority), n1)
	require.NoError(t, err)
	require.Equal(t, a1, again)

	other, _, err := FindTableAddress(Address{9})
	require.NoError(t, err)
	require.NotEqual(t, a1, other)
}

func TestFindEscrowAddress_DiffersFromTable(t *testing.T) {
	table, _, err := FindTableAddress(Address{7})
	require.NoError(t, err)
	escrow, _, err := FindEscrowAddress(table)
	require.NoError(t, err)
	require.NotEqual(t, table, escrow)
}

func TestCreateProgramAddress_RejectsLongSeeds(t *testing.T) {
	_, err := CreateProgramAddress([][]byte{bytes.Repeat([]byte{1}, 33)}, 255)
	require.ErrorContains(t, err, "seed longer")
}

func TestAuthority_Resolve(t *testing.T) {
	signer := Address{4}
	addr, err := SignerAuthority(signer).Resolve()
	require.NoError(t, err)
	require.Equal(t, signer, addr)

	_, err = SignerAuthority(Address{}).Resolve()
	require.Error(t, err)

	table, nonce, err := FindTableAddress(signer)
	require.NoError(t, err)
	auth := ProgramAuthority(TableSeeds(signer), nonce)
	require.True(t, auth.IsProgram())
	addr, err = auth.Resolve()
	require.NoError(t, err)
	require.Equal(t, table, addr)
}

func TestAddress_TextRoundTrip(t *testing.T) {
	a := AssociatedTokenAddress(Address{5})
	b, err := a.MarshalText()
	require.NoError(t, err)
	var got Address
	require.NoError(t, got.UnmarshalText(b))
	require.Equal(t, a, got)

	_, err = ParseAddress("abcd")
	require.Error(t, err)
}
