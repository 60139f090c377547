package testutil

import (
	"net/http"

	"soulbound/pkg/domain"
	"soulbound/pkg/requestcontext"
)

// WithCaller injects an authenticated caller address into the request
// context, standing in for the signer middleware in handler tests.
func WithCaller(req *http.Request, caller domain.Address) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}
