// Package access holds the owner identity of a custody ledger.
package access

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNotOwner is returned when a privileged operation is attempted by anyone
// other than the owner.
var ErrNotOwner = errors.New("access: caller is not the owner")

// Guard authorizes privileged operations against an owner fixed at creation.
// There is no way to change the owner of an existing Guard.
type Guard struct {
	owner common.Address
}

// NewGuard creates a Guard for owner.
func NewGuard(owner common.Address) Guard {
	return Guard{owner: owner}
}

// Owner returns the owner identity.
func (g Guard) Owner() common.Address { return g.owner }

// IsOwner reports whether caller is the owner.
func (g Guard) IsOwner(caller common.Address) bool { return caller == g.owner }

// RequireOwner fails with ErrNotOwner unless caller is the owner.
func (g Guard) RequireOwner(caller common.Address) error {
	if !g.IsOwner(caller) {
		return fmt.Errorf("%w: %s", ErrNotOwner, caller.Hex())
	}
	return nil
}
