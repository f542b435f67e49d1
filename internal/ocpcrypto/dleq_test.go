package ocpcrypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDLEQ_ProveVerifyRoundTrip(t *testing.T) {
	x := ScalarFromUint64(12345)
	y := MulBase(x)
	h, err := HashToPoint("test", []byte("tag"))
	require.NoError(t, err)
	gamma := MulPoint(h, x)

	proof, err := DLEQProve(y, h, gamma, x, ScalarFromUint64(777))
	require.NoError(t, err)

	ok, err := DLEQVerify(y, h, gamma, proof)
	require.NoError(t, err)
	require.True(t, ok)

	decoded, err := DecodeDLEQProof(EncodeDLEQProof(proof))
	require.NoError(t, err)
	ok, err = DLEQVerify(y, h, gamma, decoded)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDLEQ_RejectsWrongGamma(t *testing.T) {
	x := ScalarFromUint64(5)
	y := MulBase(x)
	h, err := HashToPoint("test", []byte("tag"))
	require.NoError(t, err)
	wrong := MulPoint(h, ScalarFromUint64(6))

	proof, err := DLEQProve(y, h, wrong, x, ScalarFromUint64(3))
	require.NoError(t, err)
	ok, err := DLEQVerify(y, h, wrong, proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDLEQ_ZeroNonceRejected(t *testing.T) {
	x := ScalarFromUint64(5)
	_, err := DLEQProve(MulBase(x), PointBase(), MulBase(x), x, ScalarFromUint64(0))
	require.Error(t, err)
}

func TestHashToPoint_DomainSeparated(t *testing.T) {
	a, err := HashToPoint("a", []byte("m"))
	require.NoError(t, err)
	b, err := HashToPoint("b", []byte("m"))
	require.NoError(t, err)
	require.False(t, PointEq(a, b))

	_, err = HashToPoint("a", nil)
	require.Error(t, err)

	_, err = DecodeDLEQProof(make([]byte, 95))
	require.Error(t, err)
}
