// Package curve implements the constant-product pricing math. Every function is
// pure: reserves and supply come from the caller and nothing is cached.
//
// Intermediates are computed in 256 bits so that reserve*amount never wraps;
// results that would not fit a uint64 balance fail with model.ErrOverflow.
package curve

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"vaultSwap/internal/model"
)

// SwapQuote is the result of a swap quote.
type SwapQuote struct {
	AmountIn         uint64 `json:"amount_in"`
	AmountInAfterFee uint64 `json:"amount_in_after_fee"`
	Fee              uint64 `json:"fee"`
	AmountOut        uint64 `json:"amount_out"`
}

// WithdrawQuote is the proportional redemption for a share amount.
type WithdrawQuote struct {
	AmountX uint64 `json:"amount_x"`
	AmountY uint64 `json:"amount_y"`
}

// DepositQuote holds the legs taken from the depositor and the shares minted.
type DepositQuote struct {
	AmountX uint64 `json:"amount_x"`
	AmountY uint64 `json:"amount_y"`
	Shares  uint64 `json:"shares"`
}

var bpsDenominator = uint256.NewInt(model.BasisPoints)

// QuoteSwap computes the output for selling amountIn of the "in" asset.
// The fee is taken from the input leg and every rounding step favours the pool.
func QuoteSwap(reserveIn, reserveOut, lpSupply uint64, feeBps uint16, amountIn, minAmountOut uint64, precision uint8) (SwapQuote, error) {
	if amountIn == 0 {
		return SwapQuote{}, fmt.Errorf("%w: swap amount must be positive", model.ErrInvalidAmount)
	}
	if err := checkParams(feeBps, precision); err != nil {
		return SwapQuote{}, err
	}
	if reserveIn == 0 || reserveOut == 0 || lpSupply == 0 {
		return SwapQuote{}, fmt.Errorf("%w: pool has no liquidity", model.ErrInvalidAmount)
	}
	if reserveIn > math.MaxUint64-amountIn {
		return SwapQuote{}, fmt.Errorf("%w: reserve %d + amount %d", model.ErrOverflow, reserveIn, amountIn)
	}

	// amountInAfterFee = floor(amountIn * (10000 - fee) / 10000)
	afterFee := new(uint256.Int).Mul(uint256.NewInt(amountIn), uint256.NewInt(uint64(model.BasisPoints-int(feeBps))))
	afterFee.Div(afterFee, bpsDenominator)
	amountInAfterFee := afterFee.Uint64()

	// amountOut = reserveOut - ceil(reserveIn*reserveOut / (reserveIn + amountInAfterFee))
	k := new(uint256.Int).Mul(uint256.NewInt(reserveIn), uint256.NewInt(reserveOut))
	denom := new(uint256.Int).Add(uint256.NewInt(reserveIn), afterFee)
	newReserveOut := ceilDiv(k, denom)
	out := new(uint256.Int).Sub(uint256.NewInt(reserveOut), newReserveOut)
	if !out.IsUint64() {
		return SwapQuote{}, fmt.Errorf("%w: swap output", model.ErrOverflow)
	}
	amountOut := out.Uint64()

	if amountOut == 0 {
		return SwapQuote{}, fmt.Errorf("%w: swap amount %d yields no output", model.ErrInvalidAmount, amountIn)
	}
	if amountOut < minAmountOut {
		return SwapQuote{}, fmt.Errorf("%w: expected at least %d, got %d", model.ErrSlippageExceeded, minAmountOut, amountOut)
	}

	return SwapQuote{
		AmountIn:         amountIn,
		AmountInAfterFee: amountInAfterFee,
		Fee:              amountIn - amountInAfterFee,
		AmountOut:        amountOut,
	}, nil
}

// QuoteWithdraw computes the proportional share of both reserves for sharesIn.
// The caller is responsible for checking sharesIn against the holder's balance.
func QuoteWithdraw(reserveX, reserveY, lpSupply, sharesIn uint64, precision uint8) (WithdrawQuote, error) {
	if lpSupply == 0 {
		return WithdrawQuote{}, fmt.Errorf("%w: pool has no shares outstanding", model.ErrInvalidAmount)
	}
	if sharesIn == 0 {
		return WithdrawQuote{}, fmt.Errorf("%w: share amount must be positive", model.ErrInvalidAmount)
	}
	if precision > model.MaxPrecision {
		return WithdrawQuote{}, fmt.Errorf("%w: precision %d", model.ErrInvalidAmount, precision)
	}
	if sharesIn > lpSupply {
		return WithdrawQuote{}, fmt.Errorf("%w: shares %d exceed supply %d", model.ErrInsufficientBalance, sharesIn, lpSupply)
	}

	supply := uint256.NewInt(lpSupply)
	shares := uint256.NewInt(sharesIn)
	x := new(uint256.Int).Mul(uint256.NewInt(reserveX), shares)
	x.Div(x, supply)
	y := new(uint256.Int).Mul(uint256.NewInt(reserveY), shares)
	y.Div(y, supply)

	return WithdrawQuote{AmountX: x.Uint64(), AmountY: y.Uint64()}, nil
}

// QuoteDeposit computes the shares minted for contributing up to maxX and maxY.
//
// A pool with no shares outstanding mints floor(sqrt(maxX*maxY)) and takes both
// legs in full; whatever already sits in the vaults goes to that depositor. A
// funded pool mints min(maxX*supply/reserveX, maxY*supply/reserveY) and takes
// ceil(shares*reserve/supply) of each asset, never more than the maxima.
func QuoteDeposit(reserveX, reserveY, lpSupply, maxX, maxY, minShares uint64, precision uint8) (DepositQuote, error) {
	if maxX == 0 || maxY == 0 {
		return DepositQuote{}, fmt.Errorf("%w: both deposit amounts must be positive", model.ErrInvalidAmount)
	}
	if precision > model.MaxPrecision {
		return DepositQuote{}, fmt.Errorf("%w: precision %d", model.ErrInvalidAmount, precision)
	}

	var quote DepositQuote
	switch {
	case lpSupply == 0:
		product := new(uint256.Int).Mul(uint256.NewInt(maxX), uint256.NewInt(maxY))
		shares := new(uint256.Int).Sqrt(product)
		quote = DepositQuote{AmountX: maxX, AmountY: maxY, Shares: shares.Uint64()}
	case reserveX == 0 || reserveY == 0:
		return DepositQuote{}, fmt.Errorf("%w: reserves %d/%d with supply %d", model.ErrInvalidPool, reserveX, reserveY, lpSupply)
	default:
		supply := uint256.NewInt(lpSupply)
		rx := uint256.NewInt(reserveX)
		ry := uint256.NewInt(reserveY)

		sharesX := new(uint256.Int).Mul(uint256.NewInt(maxX), supply)
		sharesX.Div(sharesX, rx)
		sharesY := new(uint256.Int).Mul(uint256.NewInt(maxY), supply)
		sharesY.Div(sharesY, ry)
		shares := sharesX
		if sharesY.Lt(sharesX) {
			shares = sharesY
		}
		if !shares.IsUint64() {
			return DepositQuote{}, fmt.Errorf("%w: minted shares", model.ErrOverflow)
		}

		// The legs are bounded by the maxima because shares <= max*supply/reserve.
		amountX := ceilDiv(new(uint256.Int).Mul(shares, rx), supply)
		amountY := ceilDiv(new(uint256.Int).Mul(shares, ry), supply)
		quote = DepositQuote{AmountX: amountX.Uint64(), AmountY: amountY.Uint64(), Shares: shares.Uint64()}
	}

	if quote.Shares == 0 {
		return DepositQuote{}, fmt.Errorf("%w: deposit mints no shares", model.ErrInvalidAmount)
	}
	if reserveX > math.MaxUint64-quote.AmountX || reserveY > math.MaxUint64-quote.AmountY {
		return DepositQuote{}, fmt.Errorf("%w: reserves after deposit", model.ErrOverflow)
	}
	if lpSupply > math.MaxUint64-quote.Shares {
		return DepositQuote{}, fmt.Errorf("%w: share supply after deposit", model.ErrOverflow)
	}
	if quote.Shares < minShares {
		return DepositQuote{}, fmt.Errorf("%w: expected at least %d shares, got %d", model.ErrSlippageExceeded, minShares, quote.Shares)
	}
	return quote, nil
}

// SpotPrice returns the marginal price of one base unit in quote units,
// scaled by 10^precision and floored.
func SpotPrice(reserveBase, reserveQuote uint64, precision uint8) (uint64, error) {
	if precision > model.MaxPrecision {
		return 0, fmt.Errorf("%w: precision %d", model.ErrInvalidAmount, precision)
	}
	if reserveBase == 0 || reserveQuote == 0 {
		return 0, fmt.Errorf("%w: pool has no liquidity", model.ErrInvalidAmount)
	}

	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(precision)))
	price := new(uint256.Int).Mul(uint256.NewInt(reserveQuote), scale)
	price.Div(price, uint256.NewInt(reserveBase))
	if !price.IsUint64() {
		return 0, fmt.Errorf("%w: spot price", model.ErrOverflow)
	}
	return price.Uint64(), nil
}

func checkParams(feeBps uint16, precision uint8) error {
	if feeBps >= model.BasisPoints {
		return fmt.Errorf("%w: fee %d bps", model.ErrInvalidPool, feeBps)
	}
	if precision > model.MaxPrecision {
		return fmt.Errorf("%w: precision %d", model.ErrInvalidAmount, precision)
	}
	return nil
}

func ceilDiv(num, denom *uint256.Int) *uint256.Int {
	q := new(uint256.Int).Div(num, denom)
	if !new(uint256.Int).Mod(num, denom).IsZero() {
		q.AddUint64(q, 1)
	}
	return q
}
