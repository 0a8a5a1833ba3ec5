package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/eduverse-backend/internal/realtime"
)

// SocialNotifier turns social actions into realtime events for the affected user.
// Inside a request the events are queued on ctxutil.SSEData and only sent once the
// response succeeds. Outside a request they go straight to the emitter.
type SocialNotifier interface {
	FollowCreated(ctx context.Context, target uuid.UUID, follower *types.User)
	PostLiked(ctx context.Context, post *types.Post, like *types.Like, liker *types.User)
	PostCommented(ctx context.Context, post *types.Post, comment *types.Comment, commenter *types.User)
	AvatarChanged(ctx context.Context, user *types.User)
}

type socialNotifier struct {
	emit SSEEmitter
}

func NewSocialNotifier(emit SSEEmitter) SocialNotifier {
	return &socialNotifier{emit: emit}
}

func (n *socialNotifier) send(ctx context.Context, target uuid.UUID, event realtime.SSEEvent, data any) {
	if n == nil || target == uuid.Nil {
		return
	}
	msg := realtime.SSEMessage{Channel: realtime.UserChannel(target), Event: event, Data: data}
	if ssd := ctxutil.GetSSEData(ctx); ssd != nil {
		ssd.AppendMessage(msg)
		return
	}
	if n.emit != nil {
		n.emit.Emit(ctxutil.Default(ctx), msg)
	}
}

func (n *socialNotifier) FollowCreated(ctx context.Context, target uuid.UUID, follower *types.User) {
	if follower == nil || follower.ID == target {
		return
	}
	n.send(ctx, target, realtime.SSEEventFollowCreated, map[string]any{
		"follower": userSummary(follower),
	})
}

func (n *socialNotifier) PostLiked(ctx context.Context, post *types.Post, like *types.Like, liker *types.User) {
	if post == nil || liker == nil || post.AuthorID == liker.ID {
		return
	}
	n.send(ctx, post.AuthorID, realtime.SSEEventPostLiked, map[string]any{
		"post_id": post.ID,
		"like_id": like.ID,
		"user":    userSummary(liker),
	})
}

func (n *socialNotifier) PostCommented(ctx context.Context, post *types.Post, comment *types.Comment, commenter *types.User) {
	if post == nil || commenter == nil || post.AuthorID == commenter.ID {
		return
	}
	n.send(ctx, post.AuthorID, realtime.SSEEventPostCommented, map[string]any{
		"post_id": post.ID,
		"comment": comment,
		"user":    userSummary(commenter),
	})
}

func (n *socialNotifier) AvatarChanged(ctx context.Context, user *types.User) {
	if user == nil {
		return
	}
	n.send(ctx, user.ID, realtime.SSEEventUserAvatarChanged, map[string]any{
		"user_id":    user.ID,
		"avatar_url": user.AvatarURL,
	})
}
