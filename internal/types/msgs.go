package types

import "github.com/google/uuid"

// MsgInitialize creates the table owned by Authority and its escrow.
type MsgInitialize struct {
	Authority  Address `json:"authority"`
	BigBlind   uint64  `json:"bigBlind"`
	MaxPlayers uint8   `json:"maxPlayers"`
}

type MsgInitializeResponse struct {
	Table  Address `json:"table"`
	Escrow Address `json:"escrow"`
}

// MsgJoin moves BuyIn from the player's TokenAccount into the table escrow.
type MsgJoin struct {
	Table        Address `json:"table"`
	Player       Address `json:"player"`
	TokenAccount Address `json:"tokenAccount"`
	BuyIn        uint64  `json:"buyIn"`
}

type MsgJoinResponse struct {
	Seat uint8  `json:"seat"`
	Pot  uint64 `json:"pot"`
}

type MsgRequestShuffle struct {
	Table     Address `json:"table"`
	Authority Address `json:"authority"`
}

type MsgRequestShuffleResponse struct {
	Handle uuid.UUID `json:"handle"`
}

// MsgFulfillShuffle may be submitted by anyone once the oracle has answered.
type MsgFulfillShuffle struct {
	Table     Address   `json:"table"`
	Submitter Address   `json:"submitter"`
	Handle    uuid.UUID `json:"handle"`
}

type MsgFulfillShuffleResponse struct {
	HandID uint64 `json:"handId"`
	Seed   Seed   `json:"seed"`
}

type MsgAdvanceStage struct {
	Table     Address `json:"table"`
	Authority Address `json:"authority"`
}

type MsgAdvanceStageResponse struct {
	Stage Stage `json:"stage"`
}

// MsgDistribute pays the pot out to the seats listed in Winners.
type MsgDistribute struct {
	Table     Address  `json:"table"`
	Authority Address  `json:"authority"`
	Winners   []uint32 `json:"winners"`
}

type MsgDistributeResponse struct {
	Payouts []Payout `json:"payouts"`
}

type Payout struct {
	Seat         uint8   `json:"seat"`
	TokenAccount Address `json:"tokenAccount"`
	Amount       uint64  `json:"amount"`
}
