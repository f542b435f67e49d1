package types

import (
	"github.com/google/uuid"
)

const (
	MinBigBlind   = 2
	MinMaxPlayers = 2
	MaxMaxPlayers = 10
)

// TableRecord is the persisted state of one table.
type TableRecord struct {
	Authority      Address `json:"authority"`
	BigBlind       uint64  `json:"bigBlind"`
	SmallBlind     uint64  `json:"smallBlind"`
	MaxPlayers     uint8   `json:"maxPlayers"`
	CurrentPlayers uint8   `json:"currentPlayers"`
	Stage          Stage   `json:"stage"`
	Pot            uint64  `json:"pot"`
	Nonce          uint8   `json:"derivationNonce"`

	EscrowNonce uint8              `json:"escrowNonce"`
	HandID      uint64             `json:"handId"`
	Seats       []Seat             `json:"seats"`
	Pending     *PendingRandomness `json:"pendingRandomness,omitempty"`
	LastSeed    *Seed              `json:"lastSeed,omitempty"`
}

// Seat records who bought in and where their payout goes.
type Seat struct {
	Player       Address `json:"player"`
	TokenAccount Address `json:"tokenAccount"`
	Contributed  uint64  `json:"contributed"`
}

// PendingRandomness is an outstanding shuffle request.
type PendingRandomness struct {
	Handle          uuid.UUID `json:"handle"`
	RequestedHeight int64     `json:"requestedHeight"`
}

// ValidateTableParams checks the bounds accepted by initialize.
func ValidateTableParams(bigBlind uint64, maxPlayers uint8) error {
	if bigBlind < MinBigBlind {
		return ErrInvalidParameters.Wrapf("big_blind must be >= %d, got %d", MinBigBlind, bigBlind)
	}
	if maxPlayers < MinMaxPlayers || maxPlayers > MaxMaxPlayers {
		return ErrInvalidParameters.Wrapf("max_players must be in [%d, %d], got %d", MinMaxPlayers, MaxMaxPlayers, maxPlayers)
	}
	return nil
}

// NewTableRecord returns a fresh table in StageWaiting with an empty pot.
func NewTableRecord(authority Address, bigBlind uint64, maxPlayers uint8, nonce, escrowNonce uint8) (*TableRecord, error) {
	if authority.IsZero() {
		return nil, ErrInvalidParameters.Wrap("missing authority")
	}
	if err := ValidateTableParams(bigBlind, maxPlayers); err != nil {
		return nil, err
	}
	return &TableRecord{
		Authority:      authority,
		BigBlind:       bigBlind,
		SmallBlind:     bigBlind / 2,
		MaxPlayers:     maxPlayers,
		CurrentPlayers: 0,
		Stage:          StageWaiting,
		Pot:            0,
		Nonce:          nonce,
		EscrowNonce:    escrowNonce,
		HandID:         0,
		Seats:          []Seat{},
	}, nil
}

// Address re-derives the table address from the stored nonce.
func (r *TableRecord) Address() (Address, error) {
	return CreateProgramAddress(TableSeeds(r.Authority), r.Nonce)
}

// EscrowAddress re-derives the escrow token account address.
func (r *TableRecord) EscrowAddress() (Address, error) {
	table, err := r.Address()
	if err != nil {
		return Address{}, err
	}
	return CreateProgramAddress(EscrowSeeds(table), r.EscrowNonce)
}

// SignerAuthority is the program's signature over the table address, which
// owns the escrow account.
func (r *TableRecord) SignerAuthority() Authority {
	return ProgramAuthority(TableSeeds(r.Authority), r.Nonce)
}

func (r *TableRecord) SeatOfPlayer(player Address) int {
	for i := range r.Seats {
		if r.Seats[i].Player == player {
			return i
		}
	}
	return -1
}

func (r *TableRecord) SeatOfAccount(account Address) int {
	for i := range r.Seats {
		if r.Seats[i].TokenAccount == account {
			return i
		}
	}
	return -1
}

// Validate checks the record's internal invariants.
func (r *TableRecord) Validate() error {
	if r == nil {
		return ErrInvalidRequest.Wrap("nil table record")
	}
	if err := ValidateTableParams(r.BigBlind, r.MaxPlayers); err != nil {
		return err
	}
	if r.SmallBlind != r.BigBlind/2 {
		return ErrInvalidParameters.Wrapf("small_blind %d != big_blind/2", r.SmallBlind)
	}
	if r.CurrentPlayers > r.MaxPlayers {
		return ErrInvalidParameters.Wrapf("current_players %d > max_players %d", r.CurrentPlayers, r.MaxPlayers)
	}
	if int(r.CurrentPlayers) != len(r.Seats) {
		return ErrInvalidParameters.Wrapf("current_players %d != seats %d", r.CurrentPlayers, len(r.Seats))
	}
	if !r.Stage.Valid() {
		return ErrInvalidParameters.Wrapf("invalid stage %d", uint8(r.Stage))
	}
	var sum uint64
	for i, s := range r.Seats {
		if sum > ^uint64(0)-s.Contributed {
			return ErrOverflow.Wrapf("seat %d contribution overflows", i)
		}
		sum += s.Contributed
	}
	if sum != r.Pot {
		return ErrInvalidParameters.Wrapf("seat contributions %d != pot %d", sum, r.Pot)
	}
	if _, err := r.Address(); err != nil {
		return ErrInvalidParameters.Wrapf("derivation nonce: %s", err)
	}
	return nil
}
