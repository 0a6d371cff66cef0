package models

// EdgeStatus is the stored state of a directional friend edge.
type EdgeStatus string

const (
	EdgePending  EdgeStatus = "pending"
	EdgeAccepted EdgeStatus = "accepted"
)

// FriendEdge is one directional row of the friendship graph.
//
// A request from A to B is a single row (owner=A, peer=B, pending).
// Acceptance flips that row to accepted and inserts the mirrored row
// (owner=B, peer=A, accepted), so each user's friend list is a
// single-sided scan on owner_id. The two accepted rows are always
// written and removed inside one transaction.
type FriendEdge struct {
	BaseModel
	OwnerID uint       `gorm:"not null;index:idx_friend_edge_owner" json:"ownerId"`
	PeerID  uint       `gorm:"not null;index:idx_friend_edge_peer" json:"peerId"`
	Status  EdgeStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
}

func (FriendEdge) TableName() string {
	return "friend_edges"
}

// RelationStatus describes the relationship between two users from the
// first user's point of view.
type RelationStatus string

const (
	RelationNone     RelationStatus = "none"
	RelationSent     RelationStatus = "sent"
	RelationReceived RelationStatus = "received"
	RelationAccepted RelationStatus = "accepted"
)

// FriendInfo pairs a peer's identity with the edge status, as returned
// by the friend list endpoints.
type FriendInfo struct {
	User   *UserBasicInfo `json:"user"`
	Status RelationStatus `json:"status"`
}
