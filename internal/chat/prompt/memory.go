// Package prompt turns stored conversations and curriculum context into the
// message lists sent to the model.
package prompt

import (
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/eduverse-backend/internal/chat/conversation"
	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
	"github.com/yungbote/eduverse-backend/internal/chat/llm"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

const DefaultMaxMessages = 50

type Builder struct {
	log           *logger.Logger
	conversations *conversation.Store
	curriculum    *curriculum.Store
}

func NewBuilder(log *logger.Logger, conversations *conversation.Store, projects *curriculum.Store) *Builder {
	return &Builder{
		log:           log.With("component", "PromptBuilder"),
		conversations: conversations,
		curriculum:    projects,
	}
}

// PrepareMemory returns the last maxMessages turns in timestamp order, with
// their stored roles.
func (b *Builder) PrepareMemory(conversationID uuid.UUID, maxMessages int) ([]llm.Message, error) {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	msgs, err := b.conversations.Messages(conversationID)
	if err != nil {
		return nil, err
	}
	sorted := make([]conversation.Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	if len(sorted) > maxMessages {
		b.log.Debug("Trimming conversation history", "conversation_id", conversationID, "from", len(sorted), "to", maxMessages)
		sorted = sorted[len(sorted)-maxMessages:]
	}
	out := make([]llm.Message, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}
