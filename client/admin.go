package client

import (
	grug "github.com/left-curve/grug-go"
)

type adminKind int

const (
	adminNone adminKind = iota
	adminSelf
	adminAddress
)

// AdminOption selects the admin of a new contract. The zero value is
// AdminNone.
type AdminOption struct {
	kind adminKind
	addr grug.Address
}

// AdminAddress sets the given address as admin.
func AdminAddress(addr grug.Address) AdminOption {
	return AdminOption{kind: adminAddress, addr: addr}
}

// AdminSelf makes the contract its own admin.
func AdminSelf() AdminOption {
	return AdminOption{kind: adminSelf}
}

// AdminNone creates a contract without admin. Such a contract can never be
// migrated.
func AdminNone() AdminOption {
	return AdminOption{kind: adminNone}
}

// ParseAdminOption reads "self", "none" (or an empty string) or an address.
func ParseAdminOption(s string) (AdminOption, error) {
	switch s {
	case "", "none":
		return AdminNone(), nil
	case "self":
		return AdminSelf(), nil
	}
	addr, err := grug.ParseAddress(s)
	if err != nil {
		return AdminOption{}, err
	}
	return AdminAddress(addr), nil
}

// ResolveAdmin returns the admin of a contract created at the given
// address, nil for no admin.
func ResolveAdmin(opt AdminOption, contract grug.Address) *grug.Address {
	var admin grug.Address
	switch opt.kind {
	case adminSelf:
		admin = contract
	case adminAddress:
		admin = opt.addr
	default:
		return nil
	}
	return &admin
}
