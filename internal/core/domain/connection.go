package domain

import (
	"errors"
	"time"
)

// ConnectionStatus is the lifecycle state of a pairwise relationship edge.
type ConnectionStatus string

const (
	ConnectionPending      ConnectionStatus = "pending"
	ConnectionConnected    ConnectionStatus = "connected"
	ConnectionDisconnected ConnectionStatus = "disconnected"
	ConnectionIgnored      ConnectionStatus = "ignored"
)

// connectionTransitions defines the allowed lifecycle moves. DISCONNECTED
// and IGNORED are terminal.
var connectionTransitions = map[ConnectionStatus][]ConnectionStatus{
	ConnectionPending:   {ConnectionConnected, ConnectionDisconnected, ConnectionIgnored},
	ConnectionConnected: {ConnectionDisconnected},
}

var ErrDuplicateRequest = errors.New("connection request already exists")
var ErrConnectionNotFound = errors.New("connection not found")
var ErrInvalidConnectionState = errors.New("invalid connection state transition")

// CanTransitionTo reports whether a move from s to next is allowed.
func (s ConnectionStatus) CanTransitionTo(next ConnectionStatus) bool {
	for _, allowed := range connectionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is defined for s.
func (s ConnectionStatus) Terminal() bool {
	return len(connectionTransitions[s]) == 0
}

// Connection types distinguish which side is a freelancer or a business.
const (
	ConnectionTypeF2F = "f2f"
	ConnectionTypeB2F = "b2f"
	ConnectionTypeF2B = "f2b"
)

// Connection is one directional relationship request, queried bidirectionally.
// From/To hold either user references or raw emails; an email endpoint is
// resolved to the accepting user's ID at accept time.
type Connection struct {
	ID             string           `json:"id" bson:"_id,omitempty"`
	From           Identifier       `json:"from" bson:"-"`
	To             Identifier       `json:"to" bson:"-"`
	Status         ConnectionStatus `json:"status" bson:"status"`
	Type           string           `json:"connection_type" bson:"connection_type"`
	IsCoworker     bool             `json:"is_coworker" bson:"is_coworker"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at"`
	ConnectedAt    *time.Time       `json:"connected_at,omitempty" bson:"connected_at,omitempty"`
	DisconnectedAt *time.Time       `json:"disconnected_at,omitempty" bson:"disconnected_at,omitempty"`
}

// Involves reports whether the edge touches the given identifier on either end.
func (c *Connection) Involves(id Identifier) bool {
	return c.From.Equal(id) || c.To.Equal(id)
}
