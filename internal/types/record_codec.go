package types

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Fixed-width head, little-endian:
//
//	offset size  field
//	  0     8    discriminator
//	  8    32    authority
//	 40     8    big_blind
//	 48     8    small_blind
//	 56     1    max_players
//	 57     1    current_players
//	 58     1    stage
//	 59     8    pot
//	 67     1    derivation_nonce
//
// The tail carries the seat table and randomness bookkeeping.
const (
	RecordHeadSize = 68

	recordTailVersion = 1
	seatSize          = AddressBytes + AddressBytes + 8
)

var TableRecordDiscriminator = discriminator("TableRecord")

func discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

func (r *TableRecord) MarshalBinary() ([]byte, error) {
	if len(r.Seats) > MaxMaxPlayers {
		return nil, fmt.Errorf("table record: %d seats exceeds %d", len(r.Seats), MaxMaxPlayers)
	}
	out := make([]byte, RecordHeadSize, RecordHeadSize+1+1+8+1+len(r.Seats)*seatSize+1+16+8+1+32)
	copy(out[0:8], TableRecordDiscriminator[:])
	copy(out[8:40], r.Authority[:])
	binary.LittleEndian.PutUint64(out[40:48], r.BigBlind)
	binary.LittleEndian.PutUint64(out[48:56], r.SmallBlind)
	out[56] = r.MaxPlayers
	out[57] = r.CurrentPlayers
	out[58] = uint8(r.Stage)
	binary.LittleEndian.PutUint64(out[59:67], r.Pot)
	out[67] = r.Nonce

	out = append(out, recordTailVersion, r.EscrowNonce)
	out = binary.LittleEndian.AppendUint64(out, r.HandID)
	out = append(out, uint8(len(r.Seats)))
	for _, s := range r.Seats {
		out = append(out, s.Player[:]...)
		out = append(out, s.TokenAccount[:]...)
		out = binary.LittleEndian.AppendUint64(out, s.Contributed)
	}
	if r.Pending != nil {
		out = append(out, 1)
		out = append(out, r.Pending.Handle[:]...)
		out = binary.LittleEndian.AppendUint64(out, uint64(r.Pending.RequestedHeight))
	} else {
		out = append(out, 0)
	}
	if r.LastSeed != nil {
		out = append(out, 1)
		out = append(out, r.LastSeed[:]...)
	} else {
		out = append(out, 0)
	}
	return out, nil
}

func (r *TableRecord) UnmarshalBinary(b []byte) error {
	if len(b) < RecordHeadSize {
		return fmt.Errorf("table record: expected at least %d bytes, got %d", RecordHeadSize, len(b))
	}
	if [8]byte(b[0:8]) != TableRecordDiscriminator {
		return fmt.Errorf("table record: bad discriminator")
	}
	var out TableRecord
	copy(out.Authority[:], b[8:40])
	out.BigBlind = binary.LittleEndian.Uint64(b[40:48])
	out.SmallBlind = binary.LittleEndian.Uint64(b[48:56])
	out.MaxPlayers = b[56]
	out.CurrentPlayers = b[57]
	out.Stage = Stage(b[58])
	out.Pot = binary.LittleEndian.Uint64(b[59:67])
	out.Nonce = b[67]
	if !out.Stage.Valid() {
		return fmt.Errorf("table record: invalid stage %d", b[58])
	}

	rd := &reader{bytes: b, off: RecordHeadSize}
	version, err := rd.u8()
	if err != nil {
		return err
	}
	if version != recordTailVersion {
		return fmt.Errorf("table record: unsupported tail version %d", version)
	}
	if out.EscrowNonce, err = rd.u8(); err != nil {
		return err
	}
	if out.HandID, err = rd.u64(); err != nil {
		return err
	}
	n, err := rd.u8()
	if err != nil {
		return err
	}
	if n > MaxMaxPlayers {
		return fmt.Errorf("table record: %d seats exceeds %d", n, MaxMaxPlayers)
	}
	out.Seats = make([]Seat, n)
	for i := range out.Seats {
		s := &out.Seats[i]
		if err := rd.copyInto(s.Player[:]); err != nil {
			return err
		}
		if err := rd.copyInto(s.TokenAccount[:]); err != nil {
			return err
		}
		if s.Contributed, err = rd.u64(); err != nil {
			return err
		}
	}

	flag, err := rd.u8()
	if err != nil {
		return err
	}
	if flag == 1 {
		var handle uuid.UUID
		if err := rd.copyInto(handle[:]); err != nil {
			return err
		}
		h, err := rd.u64()
		if err != nil {
			return err
		}
		out.Pending = &PendingRandomness{Handle: handle, RequestedHeight: int64(h)}
	}

	if flag, err = rd.u8(); err != nil {
		return err
	}
	if flag == 1 {
		var seed Seed
		if err := rd.copyInto(seed[:]); err != nil {
			return err
		}
		out.LastSeed = &seed
	}
	if rd.off != len(b) {
		return fmt.Errorf("table record: %d trailing bytes", len(b)-rd.off)
	}

	*r = out
	return nil
}

type reader struct {
	bytes []byte
	off   int
}

func (r *reader) take(n int) ([]byte, error) {
	if r.off+n > len(r.bytes) {
		return nil, fmt.Errorf("table record: truncated at offset %d", r.off)
	}
	b := r.bytes[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) copyInto(dst []byte) error {
	b, err := r.take(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}
