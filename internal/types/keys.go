package types

const (
	// ModuleName defines the module name. It is also the error codespace.
	ModuleName = "table"

	// StoreKey defines the primary module store key.
	StoreKey = ModuleName
)

var (
	// TableKeyPrefix stores TableRecord by address: TableKeyPrefix || address.
	TableKeyPrefix = []byte{0x01}
)

func TableKey(addr Address) []byte {
	bz := make([]byte, 1+AddressBytes)
	bz[0] = TableKeyPrefix[0]
	copy(bz[1:], addr[:])
	return bz
}
