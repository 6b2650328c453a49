package model

import "time"

// SenderType identifies who wrote a chat message.
type SenderType string

const (
	SenderUser SenderType = "user"
	SenderAI   SenderType = "ai"
)

// ChatMessage is one entry in a conversation log.
type ChatMessage struct {
	ID                    string             `json:"id"`
	ConversationID        string             `json:"conversationId"`
	SenderType            SenderType         `json:"senderType"`
	Content               string             `json:"content"`
	Timestamp             time.Time          `json:"timestamp"`
	Intent                Intent             `json:"intent,omitempty"`
	Keywords              *ExtractedKeywords `json:"keywords,omitempty"`
	RecommendedProductIDs []string           `json:"recommendedProductIds,omitempty"`
}

// Conversation is the mutable state of one chat session.
type Conversation struct {
	ID                  string            `json:"conversationId"`
	UserID              string            `json:"userId,omitempty"`
	StartedAt           time.Time         `json:"startedAt"`
	LastMessageAt       time.Time         `json:"lastMessageAt"`
	Messages            []ChatMessage     `json:"messages"`
	AccumulatedKeywords ExtractedKeywords `json:"accumulatedKeywords"`
	DetectedIntents     []Intent          `json:"detectedIntents"`
}

// NewConversation returns an empty conversation started at now.
func NewConversation(id, userID string, now time.Time) *Conversation {
	return &Conversation{
		ID:                  id,
		UserID:              userID,
		StartedAt:           now,
		LastMessageAt:       now,
		Messages:            []ChatMessage{},
		AccumulatedKeywords: NewExtractedKeywords(),
		DetectedIntents:     []Intent{},
	}
}

// HasIntent reports whether intent was already detected in this conversation.
func (c *Conversation) HasIntent(intent Intent) bool {
	for _, i := range c.DetectedIntents {
		if i == intent {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stored state is never aliased.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = make([]ChatMessage, len(c.Messages))
	for i, m := range c.Messages {
		out.Messages[i] = m.Clone()
	}
	out.AccumulatedKeywords = c.AccumulatedKeywords.Clone()
	out.DetectedIntents = make([]Intent, len(c.DetectedIntents))
	copy(out.DetectedIntents, c.DetectedIntents)
	return &out
}

// Clone returns a deep copy of the message.
func (m ChatMessage) Clone() ChatMessage {
	out := m
	if m.Keywords != nil {
		kw := m.Keywords.Clone()
		out.Keywords = &kw
	}
	if m.RecommendedProductIDs != nil {
		out.RecommendedProductIDs = cloneStrings(m.RecommendedProductIDs)
	}
	return out
}

// ConversationSummary is the listing view of a conversation.
type ConversationSummary struct {
	ID              string    `json:"conversationId"`
	UserID          string    `json:"userId,omitempty"`
	StartedAt       time.Time `json:"startedAt"`
	LastMessageAt   time.Time `json:"lastMessageAt"`
	MessageCount    int       `json:"messageCount"`
	DetectedIntents []Intent  `json:"detectedIntents"`
}

// Summary returns the listing view of c.
func (c *Conversation) Summary() ConversationSummary {
	intents := make([]Intent, len(c.DetectedIntents))
	copy(intents, c.DetectedIntents)
	return ConversationSummary{
		ID:              c.ID,
		UserID:          c.UserID,
		StartedAt:       c.StartedAt,
		LastMessageAt:   c.LastMessageAt,
		MessageCount:    len(c.Messages),
		DetectedIntents: intents,
	}
}
