package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"hapipet/internal/db"
	"hapipet/internal/entities"
	apperr "hapipet/internal/errors"
	"hapipet/internal/repository"
)

const maxMessageLength = 2000

type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewMessageService(messages repository.MessageRepository, users repository.UserRepository) *MessageService {
	return &MessageService{messages: messages, users: users, now: time.Now}
}

func (s *MessageService) Send(ctx context.Context, senderID string, req entities.MessageRequest) (*db.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.ErrBadRequest("content is required")
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, apperr.ErrBadRequest("message too long")
	}
	if req.ReceiverID == senderID {
		return nil, apperr.ErrBadRequest("you cannot message yourself")
	}
	if err := s.userExists(ctx, req.ReceiverID); err != nil {
		return nil, err
	}

	m := &db.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    content,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MessageService) Conversation(ctx context.Context, userID, otherID string) ([]db.Message, error) {
	if err := s.userExists(ctx, otherID); err != nil {
		return nil, err
	}
	return s.messages.Conversation(ctx, userID, otherID)
}

func (s *MessageService) Conversations(ctx context.Context, userID string) ([]entities.ConversationSummary, error) {
	return s.messages.Conversations(ctx, userID)
}

// MarkRead is only allowed to the receiver. Marking an already read message is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, userID, id string) (*db.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.ErrNotFound("message not found")
	}
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrNotFound("message not found")
		}
		return nil, err
	}
	if m.ReceiverID != userID {
		return nil, apperr.ErrForbidden("only the receiver can mark a message read")
	}
	if m.ReadAt != nil {
		return m, nil
	}
	at := s.now()
	if err := s.messages.MarkRead(ctx, id, at); err != nil {
		return nil, err
	}
	m.ReadAt = &at
	return m, nil
}

func (s *MessageService) userExists(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.ErrNotFound("user not found")
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrNotFound("user not found")
		}
		return err
	}
	return nil
}
