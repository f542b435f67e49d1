package bank

import errorsmod "cosmossdk.io/errors"

const ModuleName = "bank"

var (
	ErrInsufficientFunds    = errorsmod.Register(ModuleName, 2, "insufficient funds")
	ErrAccountFrozen        = errorsmod.Register(ModuleName, 3, "account frozen")
	ErrTransferUnauthorized = errorsmod.Register(ModuleName, 4, "authority does not own source account")
	ErrAccountNotFound      = errorsmod.Register(ModuleName, 5, "token account not found")
	ErrBalanceOverflow      = errorsmod.Register(ModuleName, 6, "balance overflows uint64")
	ErrInvalidAmount        = errorsmod.Register(ModuleName, 7, "invalid amount")
	ErrAccountExists        = errorsmod.Register(ModuleName, 8, "token account already exists")
	ErrMintUnauthorized     = errorsmod.Register(ModuleName, 9, "signer is not the mint authority")
)

const (
	EventTypeMinted = "BankMinted"

	AttributeKeyOwner = "owner"
)
