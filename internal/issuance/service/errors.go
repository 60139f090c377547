package service

import (
	dErrors "soulbound/pkg/domain-errors"
)

var (
	// ErrSkillArityMismatch rejects mint requests whose skill id and
	// value sequences differ in length.
	ErrSkillArityMismatch = dErrors.Reason(dErrors.CodeValidation,
		"skill_arity_mismatch", "skill ids and values must have equal length")

	// ErrInvalidSignature rejects mints whose signature does not recover
	// to the configured authority over the exact payload submitted.
	ErrInvalidSignature = dErrors.Reason(dErrors.CodeUnauthorized,
		"invalid_signature", "signature does not match the issuance authority")
)
