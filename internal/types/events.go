package types

import (
	"context"
	"sync"
)

const (
	EventTypeTableInitialized = "TableInitialized"
	EventTypePlayerJoined     = "PlayerJoined"
	EventTypeShuffleRequested = "ShuffleRequested"
	EventTypeShuffleFulfilled = "ShuffleFulfilled"
	EventTypeStageAdvanced    = "StageAdvanced"
	EventTypePotAwarded       = "PotAwarded"
	EventTypePotDistributed   = "PotDistributed"

	AttributeKeyTable      = "table"
	AttributeKeyAuthority  = "authority"
	AttributeKeyEscrow     = "escrow"
	AttributeKeyPlayer     = "player"
	AttributeKeyAccount    = "tokenAccount"
	AttributeKeyAmount     = "amount"
	AttributeKeyPot        = "pot"
	AttributeKeyPlayers    = "currentPlayers"
	AttributeKeySeat       = "seat"
	AttributeKeyStage      = "stage"
	AttributeKeyFrom       = "from"
	AttributeKeyHandle     = "handle"
	AttributeKeyHandID     = "handId"
	AttributeKeySeed       = "seed"
	AttributeKeyWinners    = "winners"
	AttributeKeyBigBlind   = "bigBlind"
	AttributeKeySmallBlind = "smallBlind"
	AttributeKeyMaxPlayers = "maxPlayers"
	AttributeKeyReplaced   = "replaced"
)

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

func NewEvent(typ string, attrs ...Attribute) Event {
	return Event{Type: typ, Attributes: attrs}
}

func NewAttribute(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// EventManager collects the events of one operation.
type EventManager struct {
	mu     sync.Mutex
	events []Event
}

func NewEventManager() *EventManager {
	return &EventManager{}
}

func (em *EventManager) Emit(ev Event) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.events = append(em.events, ev)
}

func (em *EventManager) Events() []Event {
	em.mu.Lock()
	defer em.mu.Unlock()
	out := make([]Event, len(em.events))
	copy(out, em.events)
	return out
}

type eventManagerKey struct{}

func WithEventManager(ctx context.Context, em *EventManager) context.Context {
	return context.WithValue(ctx, eventManagerKey{}, em)
}

// EmitEvent records ev on the context's EventManager, if any.
func EmitEvent(ctx context.Context, ev Event) {
	if em, ok := ctx.Value(eventManagerKey{}).(*EventManager); ok && em != nil {
		em.Emit(ev)
	}
}
