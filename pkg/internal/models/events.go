package models

import (
	jsoniter "github.com/json-iterator/go"
)

// Inbound event kinds, delivered by the gateway in arrival order.
const (
	EventMessage           = "message"
	EventMessageEdit       = "message_edit"
	EventMessageDelete     = "message_delete"
	EventReactionAdd       = "reaction_add"
	EventReactionRemove    = "reaction_remove"
	EventTyping            = "typing"
	EventPresence          = "presence"
	EventActivityUpdate    = "activity_update"
	EventMemberJoined      = "member_joined"
	EventMemberLeft        = "member_left"
	EventMemberRoleUpdated = "member_role_updated"
	EventProfileUpdate     = "profile_update"
	EventServerKeyShared   = "server_key_shared"
	EventServerKeyRequest  = "server_key_requested"
	EventDirectMessage     = "dm_message"
	EventRoomCreated       = "room_created"
	EventRoomDeleted       = "room_deleted"
	EventRoomLockToggled   = "room_lock_toggled"
	EventRoomKnock         = "room_knock"
	EventRoomInvite        = "room_invite"
	EventSoundboardPlay    = "soundboard_play"

	// Gateway-internal frames.
	EventCall  = "call"
	EventReply = "reply"
)

// Outbound command kinds.
const (
	CommandSubscribe      = "subscribe"
	CommandUnsubscribe    = "unsubscribe"
	CommandSendMessage    = "send_message"
	CommandEditMessage    = "edit_message"
	CommandDeleteMessage  = "delete_message"
	CommandActivityUpdate = "activity_update"
	CommandShareKey       = "share_key"
)

// Event is the envelope for everything crossing the gateway, tagged with a
// type discriminator and carrying a kind-specific payload.
type Event struct {
	Type    string              `json:"type"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

func NewEvent(kind string, payload any) Event {
	raw, _ := jsoniter.Marshal(payload)
	return Event{Type: kind, Payload: raw}
}

func (e Event) Marshal() []byte {
	raw, _ := jsoniter.Marshal(e)
	return raw
}

func ParseEvent(data []byte) (Event, error) {
	var ev Event
	if err := jsoniter.Unmarshal(data, &ev); err != nil {
		return ev, err
	}
	return ev, nil
}

// Decode unmarshals the payload into the kind-specific struct.
func (e Event) Decode(out any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return jsoniter.Unmarshal(e.Payload, out)
}

// Event payloads

type MessagePayload struct {
	Message Message `json:"message"`
}

type MessageEditPayload struct {
	ID         string `json:"id"`
	ChannelID  string `json:"channel_id"`
	Content    string `json:"content,omitempty"`
	Ciphertext []byte `json:"ciphertext,omitempty"`
}

type MessageDeletePayload struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

type ReactionPayload struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
	Emoji     string `json:"emoji"`
	UserID    string `json:"user_id"`
}

type TypingPayload struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Started   bool   `json:"started"`
}

type PresencePayload struct {
	UserID string         `json:"user_id"`
	Online bool           `json:"online"`
	Status PresenceStatus `json:"status"`
}

type ActivityPayload struct {
	UserID   string    `json:"user_id"`
	Activity *Activity `json:"activity,omitempty"`
}

type MemberJoinedPayload struct {
	ServerID string `json:"server_id"`
	Member   Member `json:"member"`
}

type MemberLeftPayload struct {
	ServerID string `json:"server_id"`
	UserID   string `json:"user_id"`
}

type MemberRolePayload struct {
	ServerID   string `json:"server_id"`
	UserID     string `json:"user_id"`
	PowerLevel int    `json:"power_level"`
}

type ProfileUpdatePayload struct {
	ServerID string  `json:"server_id"`
	UserID   string  `json:"user_id"`
	Name     string  `json:"name"`
	Nick     string  `json:"nick,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

type KeySharedPayload struct {
	ConversationID string              `json:"conversation_id"`
	SenderID       string              `json:"sender_id"`
	Bundle         jsoniter.RawMessage `json:"bundle"`
}

type KeyRequestedPayload struct {
	ConversationID string `json:"conversation_id"`
	RequesterID    string `json:"requester_id"`
}

type DirectMessagePayload struct {
	ConversationID string  `json:"conversation_id"`
	Message        Message `json:"message"`
}

type RoomCreatedPayload struct {
	Channel Channel `json:"channel"`
}

type RoomDeletedPayload struct {
	ChannelID string `json:"channel_id"`
	ServerID  string `json:"server_id"`
}

type RoomLockPayload struct {
	ChannelID string `json:"channel_id"`
	ServerID  string `json:"server_id"`
	Locked    bool   `json:"locked"`
}

type PromptPayload struct {
	ID        string     `json:"id"`
	Kind      PromptKind `json:"kind"`
	ChannelID string     `json:"channel_id"`
	SenderID  string     `json:"sender_id"`
}

type SubscribePayload struct {
	ChannelID      string `json:"channel_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type SoundboardPayload struct {
	ChannelID string `json:"channel_id"`
	SoundID   string `json:"sound_id"`
}

// Gateway call frames for request/reply over the event stream.

type CallRequest struct {
	ID      string              `json:"id"`
	Action  string              `json:"action"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

type CallReply struct {
	ID      string              `json:"id"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
	Error   string              `json:"error,omitempty"`
}
