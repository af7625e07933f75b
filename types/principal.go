package types

// Principal identifies a party that can hold asset balances and authorize
// operations: an SME originator, a lender, the admin, or the treasury.
// The value is opaque to the engine — whatever the host's identity layer
// hands out (an account address, a user id) works, as long as it is stable.
type Principal string

// IsZero reports whether the principal is unset.
func (p Principal) IsZero() bool { return p == "" }

// String implements fmt.Stringer.
func (p Principal) String() string { return string(p) }
