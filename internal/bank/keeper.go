package bank

import (
	"context"

	"cosmossdk.io/log"

	"onchainpoker/escrow/internal/store"
	"onchainpoker/escrow/internal/types"
)

var _ types.Ledger = Keeper{}

// Keeper is the token ledger.
type Keeper struct {
	storeService  store.Service
	mintAuthority types.Address
	logger        log.Logger
}

// NewKeeper returns a ledger keeper. A zero mintAuthority leaves minting open
// to any signer (devnet faucet) and disables freezing.
func NewKeeper(storeService store.Service, mintAuthority types.Address, logger log.Logger) Keeper {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return Keeper{
		storeService:  storeService,
		mintAuthority: mintAuthority,
		logger:        logger.With("module", "x/"+ModuleName),
	}
}

func (k Keeper) GetAccount(ctx context.Context, addr types.Address) (*Account, error) {
	bz := k.storeService.OpenKVStore(ctx).Get(accountKey(addr))
	if bz == nil {
		return nil, nil
	}
	var acc Account
	if err := acc.UnmarshalBinary(bz); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (k Keeper) setAccount(ctx context.Context, addr types.Address, acc *Account) error {
	bz, err := acc.MarshalBinary()
	if err != nil {
		return err
	}
	k.storeService.OpenKVStore(ctx).Set(accountKey(addr), bz)
	return nil
}

func (k Keeper) mustAccount(ctx context.Context, addr types.Address) (*Account, error) {
	acc, err := k.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrAccountNotFound.Wrapf("account %s", addr)
	}
	return acc, nil
}

func (k Keeper) OpenAccount(ctx context.Context, account, owner types.Address) error {
	if owner.IsZero() {
		return ErrTransferUnauthorized.Wrap("missing owner")
	}
	existing, err := k.GetAccount(ctx, account)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAccountExists.Wrapf("account %s", account)
	}
	return k.setAccount(ctx, account, &Account{Owner: owner})
}

func (k Keeper) Balance(ctx context.Context, account types.Address) (uint64, error) {
	acc, err := k.mustAccount(ctx, account)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Transfer validates everything before writing, so a failure leaves both
// accounts untouched.
func (k Keeper) Transfer(ctx context.Context, src, dst types.Address, amount uint64, authority types.Authority) error {
	if amount == 0 {
		return ErrInvalidAmount.Wrap("amount must be > 0")
	}
	from, err := k.mustAccount(ctx, src)
	if err != nil {
		return err
	}
	signer, err := authority.Resolve()
	if err != nil {
		return ErrTransferUnauthorized.Wrap(err.Error())
	}
	if signer != from.Owner {
		return ErrTransferUnauthorized.Wrapf("account %s is owned by %s, not %s", src, from.Owner, signer)
	}
	if from.Frozen {
		return ErrAccountFrozen.Wrapf("source %s", src)
	}
	if src == dst {
		if from.Balance < amount {
			return ErrInsufficientFunds.Wrapf("have=%d need=%d", from.Balance, amount)
		}
		return nil
	}
	to, err := k.mustAccount(ctx, dst)
	if err != nil {
		return err
	}
	if to.Frozen {
		return ErrAccountFrozen.Wrapf("destination %s", dst)
	}
	if from.Balance < amount {
		return ErrInsufficientFunds.Wrapf("have=%d need=%d", from.Balance, amount)
	}
	if to.Balance > ^uint64(0)-amount {
		return ErrBalanceOverflow.Wrapf("have=%d add=%d", to.Balance, amount)
	}

	from.Balance -= amount
	to.Balance += amount
	if err := k.setAccount(ctx, src, from); err != nil {
		return err
	}
	if err := k.setAccount(ctx, dst, to); err != nil {
		return err
	}
	k.logger.Debug("transfer", "from", src.String(), "to", dst.String(), "amount", amount, "authority", authority.String())
	return nil
}

// Mint credits amount to owner's associated token account, creating it when
// missing, and returns that account.
func (k Keeper) Mint(ctx context.Context, signer, owner types.Address, amount uint64) (types.Address, error) {
	if !k.mintAuthority.IsZero() && signer != k.mintAuthority {
		return types.Address{}, ErrMintUnauthorized.Wrapf("signer %s", signer)
	}
	if owner.IsZero() {
		return types.Address{}, ErrInvalidAmount.Wrap("missing owner")
	}
	if amount == 0 {
		return types.Address{}, ErrInvalidAmount.Wrap("amount must be > 0")
	}
	addr := types.AssociatedTokenAddress(owner)
	acc, err := k.GetAccount(ctx, addr)
	if err != nil {
		return types.Address{}, err
	}
	if acc == nil {
		acc = &Account{Owner: owner}
	}
	if acc.Balance > ^uint64(0)-amount {
		return types.Address{}, ErrBalanceOverflow.Wrapf("have=%d add=%d", acc.Balance, amount)
	}
	acc.Balance += amount
	if err := k.setAccount(ctx, addr, acc); err != nil {
		return types.Address{}, err
	}
	k.logger.Info("minted", "owner", owner.String(), "account", addr.String(), "amount", amount)
	return addr, nil
}

// SetFrozen freezes or thaws an account. Only the configured mint authority
// may do so.
func (k Keeper) SetFrozen(ctx context.Context, signer, account types.Address, frozen bool) error {
	if k.mintAuthority.IsZero() || signer != k.mintAuthority {
		return ErrMintUnauthorized.Wrapf("signer %s", signer)
	}
	acc, err := k.mustAccount(ctx, account)
	if err != nil {
		return err
	}
	acc.Frozen = frozen
	if err := k.setAccount(ctx, account, acc); err != nil {
		return err
	}
	k.logger.Info("account freeze updated", "account", account.String(), "frozen", frozen)
	return nil
}
