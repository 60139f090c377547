// Package audit captures the registry's observable notifications: every
// ledger movement, rejected transfer, approval flip, and administrative
// change becomes an Event. Events flow publisher -> worker -> store; the
// postgres store is a transactional outbox relayed to Kafka, which is the
// source of truth for downstream watchers.
package audit

import (
	"time"

	"github.com/google/uuid"

	"soulbound/pkg/domain"
)

// Category classifies audit events by their primary purpose. This enables
// different retention policies, storage backends, and routing.
type Category string

const (
	// CategoryCompliance covers the credential lifecycle: issuance, burns,
	// attribute rewrites, administrator handovers. Long retention.
	CategoryCompliance Category = "compliance"

	// CategorySecurity covers attempted policy violations: rejected
	// transfers and signature failures. These feed alerting pipelines.
	CategorySecurity Category = "security"

	// CategoryOperations covers routine registry housekeeping: skill
	// catalog edits, approval flips, locator changes.
	CategoryOperations Category = "operations"
)

// Action identifies what happened. The action string is the event's routing
// key and must stay stable across releases.
type Action string

const (
	ActionTokenMinted       Action = "token.minted"
	ActionTokenBurned       Action = "token.burned"
	ActionTransferRejected  Action = "token.transfer_rejected"
	ActionSignatureRejected Action = "mint.signature_rejected"
	ActionApprovalChanged   Action = "approval.changed"
	ActionOperatorChanged   Action = "operator.changed"
	ActionSkillAdded        Action = "skill.added"
	ActionSkillEdited       Action = "skill.edited"
	ActionSkillValueEdited  Action = "skill.value_edited"
	ActionAdminTransferred  Action = "admin.transferred"
	ActionAdminRenounced    Action = "admin.renounced"
	ActionBaseLocatorSet    Action = "config.base_locator_set"
)

// actionCategories is the source of truth for event routing. Actions not
// listed here default to CategoryOperations.
var actionCategories = map[Action]Category{
	ActionTokenMinted:       CategoryCompliance,
	ActionTokenBurned:       CategoryCompliance,
	ActionSkillValueEdited:  CategoryCompliance,
	ActionAdminTransferred:  CategoryCompliance,
	ActionAdminRenounced:    CategoryCompliance,
	ActionTransferRejected:  CategorySecurity,
	ActionSignatureRejected: CategorySecurity,
	ActionApprovalChanged:   CategoryOperations,
	ActionOperatorChanged:   CategoryOperations,
	ActionSkillAdded:        CategoryOperations,
	ActionSkillEdited:       CategoryOperations,
	ActionBaseLocatorSet:    CategoryOperations,
}

// Category returns the routing category for the action.
func (a Action) Category() Category {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Action    Action
	Timestamp time.Time

	// Actor is the authenticated caller, zero for unauthenticated paths
	// (a mint submitted without a bearer token still audits).
	Actor domain.Address

	// Subject is what the action touched: a token id in decimal, a skill
	// id in decimal, or an address in hex, depending on the action.
	Subject string

	// Decision is "allowed" or "denied" for guarded operations, empty for
	// plain state changes.
	Decision string

	// Reason carries the machine-readable failure reason on denials.
	Reason string

	RequestID string
	ClientIP  string
	Device    string
}

// Decisions recorded on guarded operations.
const (
	DecisionAllowed = "allowed"
	DecisionDenied  = "denied"
)
