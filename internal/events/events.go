// Package events carries news create/update/delete notifications over
// Kafka so every process holding an in-memory index can keep it live
// against a shared record store. When eventing is disabled the service
// invokes the index maintenance hooks in-process instead.
package events

import (
	"github.com/charisk/newswire/model"
)

// Type discriminates the event payload.
type Type string

const (
	TypeCreated Type = "news.created"
	TypeUpdated Type = "news.updated"
	TypeDeleted Type = "news.deleted"
)

// Envelope is the JSON wire format. Created and updated events carry the
// full record so consumers never need a read-back; deleted events carry
// only the ID.
type Envelope struct {
	Type Type        `json:"type"`
	News *model.News `json:"news,omitempty"`
	ID   int64       `json:"id,omitempty"`
}
