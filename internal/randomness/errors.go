package randomness

import errorsmod "cosmossdk.io/errors"

const ModuleName = "randomness"

var (
	ErrRequestNotFound   = errorsmod.Register(ModuleName, 2, "randomness request not found")
	ErrAlreadyFulfilled  = errorsmod.Register(ModuleName, 3, "randomness request already fulfilled")
	ErrInvalidProof      = errorsmod.Register(ModuleName, 4, "invalid vrf proof")
	ErrNotFulfilled      = errorsmod.Register(ModuleName, 5, "randomness request not yet fulfilled")
	ErrOracleUnavailable = errorsmod.Register(ModuleName, 6, "no randomness oracle configured")
	ErrRequestCancelled  = errorsmod.Register(ModuleName, 7, "randomness request cancelled")
)

const (
	EventTypeRandomnessRequested = "RandomnessRequested"
	EventTypeRandomnessFulfilled = "RandomnessFulfilled"
	EventTypeRandomnessCancelled = "RandomnessCancelled"

	AttributeKeyHandle = "handle"
	AttributeKeyTag    = "tag"
	AttributeKeyHeight = "height"
	AttributeKeyGamma  = "gamma"
	AttributeKeySeed   = "seed"
)
