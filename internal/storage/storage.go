package storage

import (
	"context"

	"vaultSwap/internal/model"
)

// Journal is a sink for committed operation receipts.
type Journal interface {
	PutReceipts(ctx context.Context, receipts []model.Receipt) error
}

// Nop discards receipts.
type Nop struct{}

func (Nop) PutReceipts(context.Context, []model.Receipt) error { return nil }
