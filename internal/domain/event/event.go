package event

import (
	"encoding/json"
	"time"
)

// Inbound is a single webhook delivery from the VK callback API.
// The object payload is kept raw; each handler decodes the shape it needs.
type Inbound struct {
	Type       string          `json:"type"`
	GroupID    int64           `json:"group_id"`
	Object     json.RawMessage `json:"object"`
	ReceivedAt time.Time       `json:"-"`
}

// Kind is the closed set of event kinds the pipeline knows how to format.
// Anything else maps to KindUnknown and is still delivered, never dropped.
type Kind int

const (
	KindUnknown Kind = iota
	KindLikeAdd
	KindLikeRemove
	KindMessageNew
	KindWallPostNew
)

// TypeConfirmation is handled at the HTTP boundary and never enters the pipeline.
const TypeConfirmation = "confirmation"

func KindOf(typ string) Kind {
	switch typ {
	case "like_add":
		return KindLikeAdd
	case "like_remove":
		return KindLikeRemove
	case "message_new":
		return KindMessageNew
	case "wall_post_new":
		return KindWallPostNew
	default:
		return KindUnknown
	}
}

// ParseMode selects the markup interpretation applied by the delivery channel.
type ParseMode string

const (
	ModeNone ParseMode = ""
	ModeHTML ParseMode = "HTML"
)

// Formatted is a delivery-ready message body.
type Formatted struct {
	Body string
	Mode ParseMode
}

// LikeObject is the payload of like_add / like_remove.
type LikeObject struct {
	LikerID       int64  `json:"liker_id"`
	ObjectType    string `json:"object_type"`
	ObjectID      int64  `json:"object_id"`
	ObjectOwnerID int64  `json:"object_owner_id"`
	PostID        int64  `json:"post_id"`
}

// Message is the inner message of a message_new payload.
type Message struct {
	ID          int64        `json:"id"`
	Date        int64        `json:"date"`
	PeerID      int64        `json:"peer_id"`
	FromID      int64        `json:"from_id"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

// MessageObject is the payload of message_new.
type MessageObject struct {
	Message *Message `json:"message"`
}

// WallPost is the payload of wall_post_new.
type WallPost struct {
	ID          int64        `json:"id"`
	OwnerID     int64        `json:"owner_id"`
	FromID      int64        `json:"from_id"`
	Date        int64        `json:"date"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}
