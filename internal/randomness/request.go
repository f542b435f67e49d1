package randomness

import (
	"github.com/google/uuid"

	"onchainpoker/escrow/internal/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusCancelled Status = "cancelled"
)

// Request is one registered randomness request.
type Request struct {
	Handle          uuid.UUID   `json:"handle"`
	Tag             []byte      `json:"tag"`
	RequestedHeight int64       `json:"requestedHeight"`
	Status          Status      `json:"status"`
	Gamma           []byte      `json:"gamma,omitempty"`
	Seed            *types.Seed `json:"seed,omitempty"`
	FulfilledHeight int64       `json:"fulfilledHeight,omitempty"`
}

var (
	requestKeyPrefix = []byte{0x01}
	seqKey           = []byte{0x02}
)

func requestKey(handle uuid.UUID) []byte {
	return append(append([]byte(nil), requestKeyPrefix...), handle[:]...)
}
