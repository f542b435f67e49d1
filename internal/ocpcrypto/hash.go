package ocpcrypto

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
)

var (
	hashToScalarPrefix = []byte("ESCROWv1|hash_to_scalar|")
	hashToPointPrefix  = []byte("ESCROWv1|hash_to_point|")
)

func updateLenBytes(h hash.Hash, b []byte) {
	h.Write(u32le(uint32(len(b))))
	h.Write(b)
}

func domainDigest(prefix []byte, domainSep string, msgs [][]byte) ([]byte, error) {
	h := sha512.New()
	h.Write(prefix)
	updateLenBytes(h, []byte(domainSep))
	for _, m := range msgs {
		if m == nil {
			return nil, fmt.Errorf("hash: nil msg")
		}
		updateLenBytes(h, m)
	}
	return h.Sum(nil), nil
}

func HashToScalar(domainSep string, msgs ...[]byte) (Scalar, error) {
	digest, err := domainDigest(hashToScalarPrefix, domainSep, msgs)
	if err != nil {
		return Scalar{}, err
	}
	return ScalarFromUniformBytes(digest)
}

// HashToPoint maps the messages to a group element with no known discrete log
// relative to the base point.
func HashToPoint(domainSep string, msgs ...[]byte) (Point, error) {
	digest, err := domainDigest(hashToPointPrefix, domainSep, msgs)
	if err != nil {
		return Point{}, err
	}
	var p Point
	p.v.FromUniformBytes(digest)
	return p, nil
}

func u32le(x uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, x)
	return b
}

func concatBytes(chunks ...[]byte) []byte {
	var n int
	for _, c := range chunks {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
