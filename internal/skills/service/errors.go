package service

import (
	dErrors "soulbound/pkg/domain-errors"
)

// ErrIndexOutOfRange rejects edits and reads of catalog positions past
// the current sequence length. Attribute values are exempt: they may
// reference positions that do not exist yet.
var ErrIndexOutOfRange = dErrors.Reason(dErrors.CodeNotFound,
	"index_out_of_range", "skill id is beyond the catalog")
