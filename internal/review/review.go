// Package review implements the manual-review queue: requests parked in
// ManualReview wait here for a human decision. Claiming an item is atomic,
// so two reviewers can never act on the same item; resolving an item
// re-enters the request into processing or fails it.
package review

import (
	"time"

	"github.com/google/uuid"
)

// Action is the reviewer's decision kind.
type Action string

const (
	// ActionAccept approves the proposed classification; the request
	// re-enters processing.
	ActionAccept Action = "accept"
	// ActionReassign pins a reviewer-chosen category; the request
	// re-enters processing with a manual assignment.
	ActionReassign Action = "reassign"
	// ActionReject fails the request.
	ActionReject Action = "reject"
)

// Decision is a reviewer's resolution of one item.
type Decision struct {
	Action   Action `json:"action"`
	Category string `json:"category,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Valid reports whether the decision is well formed. Reassign requires a
// category code.
func (d Decision) Valid() bool {
	switch d.Action {
	case ActionAccept, ActionReject:
		return true
	case ActionReassign:
		return d.Category != ""
	default:
		return false
	}
}

// Item is one queued review entry. Reason is the human-readable cause that
// parked the request, naming the failing rule or threshold.
type Item struct {
	ID        uuid.UUID  `json:"id"`
	RequestID uuid.UUID  `json:"request_id"`
	Reason    string     `json:"reason"`
	ClaimedBy *string    `json:"claimed_by,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
