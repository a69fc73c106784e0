/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package apply

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
	"github.com/sunnydmess/labctl/pkg/k8s/client"
)

// ClientSource yields the typed cluster client. It is satisfied by
// client.Factory; construction stays lazy so cluster resources can be
// declared before the credential exists.
type ClientSource interface {
	Typed() (client.Interface, error)
}

// apiRate paces reconciliation calls against the API server. The burst
// covers a typical resource set so only large overlays are actually slowed.
var apiRate = rate.NewLimiter(rate.Limit(20), 40)

// await blocks until the pacer admits another API call.
func await(ctx context.Context) error {
	if err := apiRate.Wait(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeTimeout, "rate limiter wait aborted", err)
	}
	return nil
}

// classify maps an API error to the provisioning taxonomy, carrying the
// identity of the rejected object. Validation rejections are configuration
// errors, fatal until the declaration is fixed; everything else on the wire
// is a connectivity error and retryable via re-run.
func classify(err error, kind, name string) error {
	identity := fmt.Sprintf("%s/%s", kind, name)
	switch {
	case apierrors.IsInvalid(err), apierrors.IsBadRequest(err), apierrors.IsForbidden(err):
		return apperrors.Wrap(apperrors.ErrCodeConfiguration,
			fmt.Sprintf("API rejected %s", identity), err)
	default:
		return apperrors.Wrap(apperrors.ErrCodeConnectivity,
			fmt.Sprintf("API call for %s failed", identity), err)
	}
}
