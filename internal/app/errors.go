package app

import errorsmod "cosmossdk.io/errors"

const codespace = "app"

var (
	ErrTxDecode      = errorsmod.Register(codespace, 2, "tx decode error")
	ErrUnknownTxType = errorsmod.Register(codespace, 3, "unknown tx type")
	ErrUnauthorized  = errorsmod.Register(codespace, 4, "tx authentication failed")
	ErrInvalidNonce  = errorsmod.Register(codespace, 5, "invalid tx.nonce")
	ErrReplayedNonce = errorsmod.Register(codespace, 6, "replayed tx.nonce")
)
