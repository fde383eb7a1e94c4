package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
)

// ViewerStatus is a friendship status as seen by one of its two parties.
type ViewerStatus string

const (
	ViewerStatusPending  ViewerStatus = "pending"
	ViewerStatusReceived ViewerStatus = "received"
	ViewerStatusAccepted ViewerStatus = "accepted"
)

// Friendship is a directed row: UserID sent the request to FriendID.
type Friendship struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	FriendID  uuid.UUID        `json:"friend_id"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// ResolveViewerStatus maps a stored status and requester to what viewer sees:
// an unresolved request is "pending" for its sender and "received" for its
// recipient; accepted rows read the same for both.
func ResolveViewerStatus(status FriendshipStatus, requester, viewer uuid.UUID) ViewerStatus {
	if status == FriendshipStatusAccepted {
		return ViewerStatusAccepted
	}
	if requester == viewer {
		return ViewerStatusPending
	}
	return ViewerStatusReceived
}

// FriendListEntry is one row of a user's friends list.
type FriendListEntry struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	CurrentWeight *float64     `json:"currentWeight"`
	Status        ViewerStatus `json:"status"`
}
