package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventFollowCreated     SSEEvent = "FollowCreated"
	SSEEventPostLiked         SSEEvent = "PostLiked"
	SSEEventPostCommented     SSEEvent = "PostCommented"
	SSEEventUserAvatarChanged SSEEvent = "UserAvatarChanged"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the channel every session of a user is subscribed to.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
