// Package api defines the request and response envelopes the recommender
// exposes to integrators. The CLI prints these as its JSON output.
package api

import (
	"time"

	"github.com/rcliao/shop-recommender/internal/model"
	"github.com/rcliao/shop-recommender/internal/session"
)

// StartRequest opens a conversation.
type StartRequest struct {
	UserID string `json:"userId,omitempty"`
}

type StartResponse struct {
	ConversationID string   `json:"conversationId"`
	Message        string   `json:"message"`
	QuickReplies   []string `json:"quickReplies"`
}

// SendRequest carries one user message with the candidate products and
// the caller's behaviour context.
type SendRequest struct {
	ConversationID string             `json:"conversationId"`
	Message        string             `json:"message"`
	Products       []model.Product    `json:"products"`
	UserContext    *model.UserContext `json:"userContext,omitempty"`
}

type RecommendationView struct {
	ProductID    string   `json:"productId"`
	Title        string   `json:"title"`
	Price        float64  `json:"price"`
	Score        int      `json:"score"`
	MatchReasons []string `json:"matchReasons"`
}

type SendResponse struct {
	Message           string                  `json:"message"`
	QuickReplies      []string                `json:"quickReplies"`
	Recommendations   []RecommendationView    `json:"recommendations,omitempty"`
	Intent            model.Intent            `json:"intent"`
	ExtractedKeywords model.ExtractedKeywords `json:"extractedKeywords"`
}

type SessionView struct {
	ConversationID  string         `json:"conversationId"`
	UserID          string         `json:"userId,omitempty"`
	StartedAt       time.Time      `json:"startedAt"`
	LastMessageAt   time.Time      `json:"lastMessageAt"`
	MessageCount    int            `json:"messageCount"`
	DetectedIntents []model.Intent `json:"detectedIntents"`
}

type HistoryEntry struct {
	ID              string           `json:"id"`
	SenderType      model.SenderType `json:"senderType"`
	Content         string           `json:"content"`
	Timestamp       time.Time        `json:"timestamp"`
	Intent          model.Intent     `json:"intent,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
}

func NewStartResponse(conversationID string, welcome session.Response) StartResponse {
	return StartResponse{
		ConversationID: conversationID,
		Message:        welcome.Message,
		QuickReplies:   nonNil(welcome.QuickReplies),
	}
}

// NewSendResponse flattens scored products into recommendation views.
func NewSendResponse(r *session.Response) SendResponse {
	out := SendResponse{
		Message:           r.Message,
		QuickReplies:      nonNil(r.QuickReplies),
		Intent:            r.Intent,
		ExtractedKeywords: r.ExtractedKeywords,
	}
	for _, sp := range r.Recommendations {
		out.Recommendations = append(out.Recommendations, RecommendationView{
			ProductID:    sp.Product.ID,
			Title:        sp.Product.Title,
			Price:        sp.Product.Price,
			Score:        sp.Score,
			MatchReasons: nonNil(sp.MatchReasons),
		})
	}
	return out
}

func NewSessionView(c *model.Conversation) SessionView {
	s := c.Summary()
	return SessionView{
		ConversationID:  s.ID,
		UserID:          s.UserID,
		StartedAt:       s.StartedAt,
		LastMessageAt:   s.LastMessageAt,
		MessageCount:    s.MessageCount,
		DetectedIntents: s.DetectedIntents,
	}
}

func NewHistoryEntries(msgs []model.ChatMessage) []HistoryEntry {
	out := make([]HistoryEntry, len(msgs))
	for i, m := range msgs {
		out[i] = HistoryEntry{
			ID:         m.ID,
			SenderType: m.SenderType,
			Content:    m.Content,
			Timestamp:  m.Timestamp,
			Intent:     m.Intent,
		}
		if len(m.RecommendedProductIDs) > 0 {
			out[i].Recommendations = append([]string(nil), m.RecommendedProductIDs...)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
