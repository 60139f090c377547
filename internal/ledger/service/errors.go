package service

import (
	dErrors "soulbound/pkg/domain-errors"
)

// Ledger failure taxonomy. Each carries a stable machine-readable reason
// the transport layer surfaces alongside the HTTP status.
var (
	// ErrNonTransferable rejects holder-to-holder moves. Tokens leave an
	// account only by burning.
	ErrNonTransferable = dErrors.Reason(dErrors.CodeForbidden,
		"non_transferable", "token transfers are restricted to mint and burn")

	// ErrNotMinted reports an operation referencing a token that does not
	// exist, whether never minted or already burned.
	ErrNotMinted = dErrors.Reason(dErrors.CodeNotFound,
		"not_minted", "token does not exist")

	// ErrNotAuthorized reports a caller without owner, approval, or
	// operator standing for the token.
	ErrNotAuthorized = dErrors.Reason(dErrors.CodeForbidden,
		"not_authorized", "caller is not authorized for this token")

	// ErrZeroAddress rejects the void address where a real participant is
	// required.
	ErrZeroAddress = dErrors.Reason(dErrors.CodeValidation,
		"zero_address", "the void address is not a valid participant")

	// ErrAlreadyIssued enforces the one-token-per-holder cap.
	ErrAlreadyIssued = dErrors.Reason(dErrors.CodeConflict,
		"already_issued", "recipient already holds a token")
)
