package types

import (
	"context"
	"time"
)

// BlockInfo is the block an operation executes in.
type BlockInfo struct {
	Height int64
	Time   time.Time
}

type blockInfoKey struct{}

func WithBlockInfo(ctx context.Context, info BlockInfo) context.Context {
	return context.WithValue(ctx, blockInfoKey{}, info)
}

// BlockInfoFrom returns the zero BlockInfo outside block execution.
func BlockInfoFrom(ctx context.Context) BlockInfo {
	info, _ := ctx.Value(blockInfoKey{}).(BlockInfo)
	return info
}
