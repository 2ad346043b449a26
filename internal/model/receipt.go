package model

// Receipt kinds.
const (
	KindSwap     = "swap"
	KindDeposit  = "deposit"
	KindWithdraw = "withdraw"
)

// Reserves is a snapshot of a pool's vault balances and share supply.
type Reserves struct {
	X      uint64 `json:"x"`
	Y      uint64 `json:"y"`
	Supply uint64 `json:"supply"`
}

// Empty reports whether the pool holds nothing.
func (r Reserves) Empty() bool {
	return r.X == 0 && r.Y == 0 && r.Supply == 0
}

// Receipt records a committed exchange operation.
type Receipt struct {
	Kind      string   `json:"kind"`
	Pool      string   `json:"pool"`
	Seed      uint64   `json:"seed"`
	User      string   `json:"user"`
	Direction string   `json:"direction,omitempty"`
	AmountIn  uint64   `json:"amount_in,omitempty"`
	AmountOut uint64   `json:"amount_out,omitempty"`
	AmountX   uint64   `json:"amount_x,omitempty"`
	AmountY   uint64   `json:"amount_y,omitempty"`
	Shares    uint64   `json:"shares,omitempty"`
	Before    Reserves `json:"before"`
	After     Reserves `json:"after"`
	Timestamp string   `json:"timestamp"`
}
