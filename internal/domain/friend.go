package domain

import "time"

// RelationStatus is the state of a friend relation.
type RelationStatus string

const (
	RelationPending  RelationStatus = "pending"
	RelationAccepted RelationStatus = "accepted"
)

// FriendRelation is a directed friend request that becomes a symmetric
// friendship once accepted. RecipientSub is recorded when the recipient accepts.
type FriendRelation struct {
	ID             string         `json:"_id"`
	SenderSub      string         `json:"senderSub"`
	SenderEmail    string         `json:"senderEmail"`
	RecipientEmail string         `json:"recipientEmail"`
	RecipientSub   string         `json:"recipientSub,omitempty"`
	Status         RelationStatus `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	AcceptedAt     *time.Time     `json:"acceptedAt,omitempty"`
}

// Friend is an accepted relation annotated with the other party's email.
type Friend struct {
	FriendRelation
	FriendEmail string `json:"friendEmail"`
}

// OtherParty returns the email and subject of the participant that is not sub.
// The subject is empty when it has never been recorded.
func (r FriendRelation) OtherParty(sub string) (email, otherSub string) {
	if r.SenderSub == sub {
		return r.RecipientEmail, r.RecipientSub
	}
	return r.SenderEmail, r.SenderSub
}

// Relations groups the three views of a user's social graph.
type Relations struct {
	Received []FriendRelation `json:"receivedRequests"`
	Sent     []FriendRelation `json:"sentRequests"`
	Friends  []Friend         `json:"friends"`
}
