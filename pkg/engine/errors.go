package engine

import (
	"errors"

	"github.com/sparkdex/sparkbook/pkg/amount"
	"github.com/sparkdex/sparkbook/pkg/escrow"
)

var (
	// ErrUnknownMarket is returned when an operation names a base asset with
	// no registered market.
	ErrUnknownMarket = errors.New("unknown market")
	// ErrMarketExists is returned when registering a second market for the
	// same base asset.
	ErrMarketExists = errors.New("market already exists")
	// ErrOrderNotFound is returned when an order id is not resting.
	ErrOrderNotFound = errors.New("order not found")
	// ErrNotOwner is returned when the caller lacks authority over the
	// target: cancelling someone else's order, or calling an owner-only
	// operation.
	ErrNotOwner = errors.New("not the owner")
	// ErrIncompatibleMarket is returned when matching orders from different
	// markets.
	ErrIncompatibleMarket = errors.New("orders reference different markets")
	// ErrSameSide is returned when matching two orders whose sizes share a
	// sign.
	ErrSameSide = errors.New("orders are on the same side")
	// ErrZeroSize is returned when opening an order with zero size.
	ErrZeroSize = errors.New("order size is zero")

	// ErrInsufficientBalance covers withdraw and escrow shortfalls.
	ErrInsufficientBalance = escrow.ErrInsufficientBalance
	// ErrOverflow is returned when size or price arithmetic exceeds the
	// representable range.
	ErrOverflow = amount.ErrOverflow
)
