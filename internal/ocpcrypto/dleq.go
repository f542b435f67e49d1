package ocpcrypto

import "fmt"

// DLEQProof shows log_G(Y) == log_H(Gamma) without revealing the exponent
// (Chaum-Pedersen).
type DLEQProof struct {
	// A = w*G
	A Point
	// B = w*H
	B Point
	// S = w + e*x
	S Scalar
}

const (
	dleqDomain     = "escrow/v1/dleq"
	DLEQProofBytes = 3 * 32
)

func dleqChallenge(y, h, gamma, a, b Point) (Scalar, error) {
	tr := NewTranscript(dleqDomain)
	_ = tr.AppendMessage("y", y.Bytes())
	_ = tr.AppendMessage("h", h.Bytes())
	_ = tr.AppendMessage("gamma", gamma.Bytes())
	_ = tr.AppendMessage("a", a.Bytes())
	_ = tr.AppendMessage("b", b.Bytes())
	return tr.ChallengeScalar("e")
}

// DLEQProve proves Y = x*G and Gamma = x*H using nonce w.
func DLEQProve(y, h, gamma Point, x, w Scalar) (DLEQProof, error) {
	if w.IsZero() {
		return DLEQProof{}, fmt.Errorf("dleq: w must be non-zero")
	}
	a := MulBase(w)
	b := MulPoint(h, w)
	e, err := dleqChallenge(y, h, gamma, a, b)
	if err != nil {
		return DLEQProof{}, err
	}
	return DLEQProof{A: a, B: b, S: ScalarAdd(w, ScalarMul(e, x))}, nil
}

func DLEQVerify(y, h, gamma Point, proof DLEQProof) (bool, error) {
	e, err := dleqChallenge(y, h, gamma, proof.A, proof.B)
	if err != nil {
		return false, err
	}

	// s*G == a + e*y
	if !PointEq(MulBase(proof.S), PointAdd(proof.A, MulPoint(y, e))) {
		return false, nil
	}
	// s*H == b + e*gamma
	if !PointEq(MulPoint(h, proof.S), PointAdd(proof.B, MulPoint(gamma, e))) {
		return false, nil
	}
	return true, nil
}

// Encoding: A(32) || B(32) || s(32 le)
func EncodeDLEQProof(p DLEQProof) []byte {
	return concatBytes(p.A.Bytes(), p.B.Bytes(), p.S.Bytes())
}

func DecodeDLEQProof(b []byte) (DLEQProof, error) {
	if len(b) != DLEQProofBytes {
		return DLEQProof{}, fmt.Errorf("dleq: expected %d bytes", DLEQProofBytes)
	}
	a, err := PointFromBytesCanonical(b[0:32])
	if err != nil {
		return DLEQProof{}, err
	}
	bl, err := PointFromBytesCanonical(b[32:64])
	if err != nil {
		return DLEQProof{}, err
	}
	s, err := ScalarFromBytesCanonical(b[64:96])
	if err != nil {
		return DLEQProof{}, err
	}
	return DLEQProof{A: a, B: bl, S: s}, nil
}
