// Package domain holds the primitive identifier types shared across the
// compliance core. Keeping them in one leaf package lets rules, stores, and
// transports agree on types without import cycles.
package domain

// Address identifies a participant (actor or counterparty) in an operation.
// The compliance core treats it as an opaque, case-sensitive token; callers
// decide whether it is a ledger account, a wallet address, or an internal id.
type Address string

// ZeroAddress is the null participant. Real transfers never originate from
// it; it appears as the counterparty of self-referential operations.
const ZeroAddress Address = ""

// IsZero reports whether the address is the null participant.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}

// AssetID identifies the asset an operation concerns.
type AssetID string

func (a AssetID) String() string {
	return string(a)
}
