package entities

import "hapipet/internal/db"

type MessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

type ConversationSummary struct {
	OtherUserID   string     `json:"other_user_id"`
	OtherUserName string     `json:"other_user_name"`
	LastMessage   db.Message `json:"last_message"`
	UnreadCount   int        `json:"unread_count"`
}
