package columns

import (
	"errors"
	"fmt"

	"github.com/finsafe/statement-anonymizer/internal/models"
)

var (
	ErrNoDateColumn     = errors.New("no date column detected")
	ErrNoMonetaryColumn = errors.New("no monetary column detected")
)

// Validate checks that the classified grid carries the roles the pipeline
// cannot work without. Error messages enumerate what was found so the caller
// can correct the input rather than guess.
func Validate(roles models.RoleMap) error {
	if !roles.Has(models.RoleDate) {
		return fmt.Errorf("%w: a Date column is required; detected roles: %v", ErrNoDateColumn, roles.Roles())
	}
	if !roles.HasMonetary() {
		return fmt.Errorf("%w: need one of Amount, Debit, Credit or Balance; detected roles: %v", ErrNoMonetaryColumn, roles.Roles())
	}
	return nil
}
