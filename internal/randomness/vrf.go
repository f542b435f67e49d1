package randomness

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"

	"onchainpoker/escrow/internal/ocpcrypto"
	"onchainpoker/escrow/internal/types"
)

const (
	vrfDomain   = "escrow/vrf"
	nonceDomain = "escrow/vrf/nonce"
	seedDomain  = "escrow/vrf/seed"
)

// VRFInput is the point the oracle must raise to its secret for a request.
func VRFInput(handle uuid.UUID, tag []byte) (ocpcrypto.Point, error) {
	return ocpcrypto.HashToPoint(vrfDomain, handle[:], nonNil(tag))
}

// SeedFromGamma derives the delivered seed from the VRF output point.
func SeedFromGamma(gamma ocpcrypto.Point) types.Seed {
	h := sha256.New()
	_, _ = h.Write([]byte(seedDomain))
	_, _ = h.Write(gamma.Bytes())
	var s types.Seed
	copy(s[:], h.Sum(nil))
	return s
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// Oracle holds the VRF secret. It runs off chain and answers requests with
// randomness/fulfill transactions.
type Oracle struct {
	x ocpcrypto.Scalar
	y ocpcrypto.Point
}

func NewOracle(secret ocpcrypto.Scalar) (*Oracle, error) {
	if secret.IsZero() {
		return nil, fmt.Errorf("oracle: secret must be non-zero")
	}
	return &Oracle{x: secret, y: ocpcrypto.MulBase(secret)}, nil
}

// GenerateOracle draws a fresh secret from r.
func GenerateOracle(r io.Reader) (*Oracle, error) {
	var buf [64]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("oracle: read entropy: %w", err)
	}
	x, err := ocpcrypto.ScalarFromUniformBytes(buf[:])
	if err != nil {
		return nil, err
	}
	return NewOracle(x)
}

// OracleFromHex loads a 32-byte canonical scalar.
func OracleFromHex(s string) (*Oracle, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("oracle: secret is not hex: %w", err)
	}
	x, err := ocpcrypto.ScalarFromBytesCanonical(b)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}
	return NewOracle(x)
}

func (o *Oracle) PublicKey() ocpcrypto.Point { return o.y }

func (o *Oracle) PublicKeyHex() string { return hex.EncodeToString(o.y.Bytes()) }

func (o *Oracle) SecretHex() string { return hex.EncodeToString(o.x.Bytes()) }

// Proof is a VRF answer for one request.
type Proof struct {
	Gamma ocpcrypto.Point
	DLEQ  ocpcrypto.DLEQProof
}

func (p Proof) GammaBytes() []byte { return p.Gamma.Bytes() }

func (p Proof) ProofBytes() []byte { return ocpcrypto.EncodeDLEQProof(p.DLEQ) }

// Seed is what the chain will deliver once this proof is accepted.
func (p Proof) Seed() types.Seed { return SeedFromGamma(p.Gamma) }

// Prove evaluates the VRF on (handle, tag). The proof nonce is derived from
// the secret and the input, so proving the same request twice is identical.
func (o *Oracle) Prove(handle uuid.UUID, tag []byte) (Proof, error) {
	h, err := VRFInput(handle, tag)
	if err != nil {
		return Proof{}, err
	}
	gamma := ocpcrypto.MulPoint(h, o.x)
	w, err := ocpcrypto.HashToScalar(nonceDomain, o.x.Bytes(), h.Bytes())
	if err != nil {
		return Proof{}, err
	}
	dleq, err := ocpcrypto.DLEQProve(o.y, h, gamma, o.x, w)
	if err != nil {
		return Proof{}, err
	}
	return Proof{Gamma: gamma, DLEQ: dleq}, nil
}

// Verify checks a proof for (handle, tag) against the oracle key y.
func Verify(y ocpcrypto.Point, handle uuid.UUID, tag []byte, gammaBytes, proofBytes []byte) (types.Seed, error) {
	gamma, err := ocpcrypto.PointFromBytesCanonical(gammaBytes)
	if err != nil {
		return types.Seed{}, ErrInvalidProof.Wrapf("gamma: %v", err)
	}
	proof, err := ocpcrypto.DecodeDLEQProof(proofBytes)
	if err != nil {
		return types.Seed{}, ErrInvalidProof.Wrapf("proof: %v", err)
	}
	h, err := VRFInput(handle, tag)
	if err != nil {
		return types.Seed{}, err
	}
	ok, err := ocpcrypto.DLEQVerify(y, h, gamma, proof)
	if err != nil {
		return types.Seed{}, ErrInvalidProof.Wrap(err.Error())
	}
	if !ok {
		return types.Seed{}, ErrInvalidProof.Wrapf("handle %s", handle)
	}
	return SeedFromGamma(gamma), nil
}
