package fund

import "errors"

var (
	// ErrInvalidAllocation reports a component list whose target ratios are
	// missing, zero, duplicated or do not sum to exactly 10000 bp.
	ErrInvalidAllocation = errors.New("fund: invalid allocation")
	// ErrInvalidFund reports missing display or creator fields.
	ErrInvalidFund = errors.New("fund: invalid fund definition")
	// ErrFundNotFound is returned for an unknown fund id.
	ErrFundNotFound = errors.New("fund: not found")
	// ErrFundInactive is returned for operations against a deactivated fund.
	ErrFundInactive = errors.New("fund: inactive")
	// ErrUnknownAsset is returned when a deposit names an undeclared asset.
	ErrUnknownAsset = errors.New("fund: unknown asset")
	// ErrInvalidAmount is returned for non-positive deposit amounts.
	ErrInvalidAmount = errors.New("fund: amount must be positive")
	// ErrValuationUnavailable wraps any oracle failure.
	ErrValuationUnavailable = errors.New("fund: valuation unavailable")
	// ErrBelowMinimum is returned when aggregate value is under the dynamic minimum.
	ErrBelowMinimum = errors.New("fund: aggregate value below minimum")
	// ErrNoContribution is returned when the contributor has nothing pending.
	ErrNoContribution = errors.New("fund: no contribution")
)
