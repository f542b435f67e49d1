package types

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

// x/table sentinel errors. Codes are stable and part of the client contract.
var (
	ErrGameFull           = errorsmod.Register(ModuleName, 2, "the game is already full")
	ErrOverflow           = errorsmod.Register(ModuleName, 3, "arithmetic overflow")
	ErrWrongStage         = errorsmod.Register(ModuleName, 4, "operation not allowed in current stage")
	ErrInvalidParameters  = errorsmod.Register(ModuleName, 5, "invalid table parameters")
	ErrUnauthorized       = errorsmod.Register(ModuleName, 6, "signer is not the table authority")
	ErrEmptyWinners       = errorsmod.Register(ModuleName, 7, "no winners given")
	ErrInvalidWinnerIndex = errorsmod.Register(ModuleName, 8, "invalid winner index")
	ErrLedgerFailure      = errorsmod.Register(ModuleName, 9, "token transfer failed")
	ErrRandomnessFailure  = errorsmod.Register(ModuleName, 10, "randomness request failed")

	ErrAlreadyInitialized  = errorsmod.Register(ModuleName, 11, "table already initialized")
	ErrTableNotFound       = errorsmod.Register(ModuleName, 12, "table not found")
	ErrInvalidRequest      = errorsmod.Register(ModuleName, 13, "invalid request")
	ErrAlreadySeated       = errorsmod.Register(ModuleName, 14, "player already seated")
	ErrNoPendingRandomness = errorsmod.Register(ModuleName, 15, "no pending randomness request")
	ErrStaleRandomness     = errorsmod.Register(ModuleName, 16, "randomness handle does not match pending request")
)

// collaboratorError tags a Ledger or Randomness failure with its x/table kind.
// The ABCI code comes from the kind; errors.Is still reaches the cause.
type collaboratorError struct {
	kind  *errorsmod.Error
	cause error
}

func (e *collaboratorError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *collaboratorError) ABCICode() uint32 { return e.kind.ABCICode() }

func (e *collaboratorError) Codespace() string { return e.kind.Codespace() }

func (e *collaboratorError) Unwrap() []error { return []error{e.kind, e.cause} }

// LedgerFailure marks err as propagated from the Ledger.
func LedgerFailure(err error) error {
	if err == nil {
		return nil
	}
	return &collaboratorError{kind: ErrLedgerFailure, cause: err}
}

// RandomnessFailure marks err as propagated from the Randomness capability.
func RandomnessFailure(err error) error {
	if err == nil {
		return nil
	}
	return &collaboratorError{kind: ErrRandomnessFailure, cause: err}
}

// Cause returns the collaborator error behind a LedgerFailure/RandomnessFailure,
// or err itself.
func Cause(err error) error {
	var ce *collaboratorError
	if errors.As(err, &ce) {
		return ce.cause
	}
	return err
}
