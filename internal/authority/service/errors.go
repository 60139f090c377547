package service

import (
	dErrors "soulbound/pkg/domain-errors"
)

var (
	// ErrNotAdministrator rejects administrator-gated operations from any
	// other caller.
	ErrNotAdministrator = dErrors.Reason(dErrors.CodeForbidden,
		"not_administrator", "caller is not the administrator")

	// ErrZeroAddress rejects handing the administrator slot to the void
	// address through the transfer path; renouncing is a separate,
	// deliberate operation.
	ErrZeroAddress = dErrors.Reason(dErrors.CodeValidation,
		"zero_address", "the void address is not a valid participant")
)
