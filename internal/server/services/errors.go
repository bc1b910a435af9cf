package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
)

// ErrFederatedDisabled is returned by federated operations when no
// identity provider is configured.
var ErrFederatedDisabled = fmt.Errorf("%w: federated login is not configured", common.ErrorNotFound)

// storeErr passes domain errors from repositories through and marks
// everything else as a store outage.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrDependencyUnavailable),
		errors.Is(err, common.ErrForbidden):
		return err
	default:
		return fmt.Errorf("%w: %v", common.ErrDependencyUnavailable, err)
	}
}
