package models

import "time"

// Vendor identifies one of the monitored usage APIs.
type Vendor string

const (
	VendorClaude Vendor = "claude"
	VendorCodex  Vendor = "codex"
)

// Vendors is the fixed iteration order for poll cycles.
var Vendors = []Vendor{VendorClaude, VendorCodex}

// Valid reports whether v names a supported vendor.
func (v Vendor) Valid() bool {
	return v == VendorClaude || v == VendorCodex
}

// Label returns the display name of the vendor.
func (v Vendor) Label() string {
	switch v {
	case VendorClaude:
		return "Claude"
	case VendorCodex:
		return "Codex"
	default:
		return string(v)
	}
}

// Account is one monitored account for a vendor. The token is an opaque
// bearer value; the rest of the application only ever asks HasToken.
type Account struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Token   string    `json:"token,omitempty"`
	AddedAt time.Time `json:"addedAt,omitzero"`
}

// HasToken reports whether the account has a usable credential.
func (a Account) HasToken() bool {
	return a.Token != ""
}

// AccountsFile is the on-disk JSON structure for accounts storage.
type AccountsFile struct {
	Version int       `json:"version,omitempty"`
	Claude  []Account `json:"claude"`
	Codex   []Account `json:"codex"`
}

// ForVendor returns the account list for a vendor.
func (f *AccountsFile) ForVendor(v Vendor) []Account {
	switch v {
	case VendorClaude:
		return f.Claude
	case VendorCodex:
		return f.Codex
	default:
		return nil
	}
}

// SetForVendor replaces the account list for a vendor.
func (f *AccountsFile) SetForVendor(v Vendor, accounts []Account) {
	switch v {
	case VendorClaude:
		f.Claude = accounts
	case VendorCodex:
		f.Codex = accounts
	}
}
