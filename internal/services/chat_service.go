package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"chats/internal/metrics"
	"chats/internal/models"
	"chats/internal/repositories"
	"chats/internal/storage"
)

const MaxMessagesPerPage = 100

// MessagePublisher delivers a stored message to everyone connected to its chat.
type MessagePublisher interface {
	Publish(chatID int, msg *models.Message) error
}

type ChatService struct {
	chats     repositories.ChatRepository
	messages  repositories.MessageRepository
	users     repositories.UserRepository
	files     *storage.FileStorage
	publisher MessagePublisher
	now       func() time.Time
}

func NewChatService(chats repositories.ChatRepository, messages repositories.MessageRepository, users repositories.UserRepository, files *storage.FileStorage) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		users:    users,
		files:    files,
		now:      time.Now,
	}
}

// SetPublisher wires live delivery. Without one, messages are only stored.
func (s *ChatService) SetPublisher(p MessagePublisher) {
	s.publisher = p
}

func (s *ChatService) CreateChat(creator *models.User, req models.ChatAdd) (*models.Chat, error) {
	chat := &models.Chat{Name: strings.TrimSpace(req.Name), CreateDate: models.Today()}
	if _, err := s.chats.Create(chat, creator.UserID); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return s.GetChat(chat.ChatID)
}

func (s *ChatService) GetChat(chatID int) (*models.Chat, error) {
	chat, err := s.chats.GetByID(chatID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	return chat, err
}

func (s *ChatService) ListChats(userID int) ([]*models.Chat, error) {
	return s.chats.ListForUser(userID)
}

// AddMember lets an existing member invite another user.
func (s *ChatService) AddMember(actor *models.User, req models.ChatMemberAdd) (*models.ChatMember, error) {
	members, err := s.members(req.ChatID)
	if err != nil {
		return nil, err
	}
	if !containsUser(members, actor.UserID) {
		return nil, ErrNotChatMember
	}
	if _, err := s.users.GetByID(req.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if containsUser(members, req.UserID) {
		return nil, ErrAlreadyMember
	}
	return s.chats.AddMember(req.ChatID, req.UserID, false)
}

func (s *ChatService) PotentialMembers(actor *models.User, chatID int) ([]*models.User, error) {
	if _, err := s.EnsureMember(actor, chatID); err != nil {
		return nil, err
	}
	return s.users.ListNotInChat(chatID)
}

// EnsureMember returns the caller's membership, failing when the chat is
// missing or the caller is not in it.
func (s *ChatService) EnsureMember(user *models.User, chatID int) (*models.ChatMember, error) {
	ok, err := s.chats.Exists(chatID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChatNotFound
	}
	member, err := s.chats.GetMember(chatID, user.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotChatMember
	}
	if err != nil {
		return nil, err
	}
	if member.User == nil {
		member.User = user
	}
	return member, nil
}

// Messages returns up to limit messages, newest first, skipping the newest offset.
func (s *ChatService) Messages(actor *models.User, chatID, offset, limit int) ([]*models.Message, error) {
	if offset < 0 || limit <= 0 || limit > MaxMessagesPerPage {
		return nil, ErrInvalidPaging
	}
	if _, err := s.EnsureMember(actor, chatID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListForChat(chatID, offset, limit)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return msgs, nil
	}

	members, err := s.chats.ListMembers(chatID)
	if err != nil {
		return nil, err
	}
	byMember := make(map[int]*models.ChatMember, len(members))
	for _, m := range members {
		byMember[m.ChatMemberID] = m
	}

	var parentIDs []int
	for _, m := range msgs {
		if m.ReplyTo != nil {
			parentIDs = append(parentIDs, *m.ReplyTo)
		}
	}
	parents, err := s.messages.GetByIDs(parentIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Message, len(parents))
	for _, p := range parents {
		p.ContainsImage = p.HasImage()
		byID[p.MessageID] = p
	}

	for _, m := range msgs {
		m.ContainsImage = m.HasImage()
		if m.ChatMemberID != nil {
			m.ChatMember = byMember[*m.ChatMemberID]
		}
		if m.ReplyTo != nil {
			m.ParentMessage = byID[*m.ReplyTo]
		}
	}
	return msgs, nil
}

// MessageImage returns the file path of an image message the caller may see.
func (s *ChatService) MessageImage(actor *models.User, messageID int) (string, error) {
	msg, err := s.messages.GetByID(messageID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrMessageNotFound
	}
	if err != nil {
		return "", err
	}
	if _, err := s.EnsureMember(actor, msg.ChatID); err != nil {
		if errors.Is(err, ErrChatNotFound) {
			return "", ErrMessageNotFound
		}
		return "", err
	}
	if !msg.HasImage() {
		return "", ErrNoImage
	}
	return s.files.Resolve(*msg.ImagePath)
}

func (s *ChatService) SendText(member *models.ChatMember, text string, replyTo *int) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	var parent *models.Message
	if replyTo != nil {
		p, err := s.messages.GetByID(*replyTo)
		if err != nil || p.ChatID != member.ChatID {
			return nil, ErrInvalidReply
		}
		p.ContainsImage = p.HasImage()
		parent = p
	}

	msg := s.newMessage(member, text, replyTo)
	if err := s.messages.Create(msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	msg.ParentMessage = parent
	metrics.RecordMessage("text")
	s.publish(msg)
	return msg, nil
}

func (s *ChatService) SendImage(member *models.ChatMember, r io.Reader) (*models.Message, error) {
	if member.UserID == nil {
		return nil, ErrNotChatMember
	}
	msg := s.newMessage(member, "", nil)
	if err := s.messages.Create(msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	path, err := s.files.SaveMessageImage(*member.UserID, member.ChatID, msg.MessageID, r)
	if err != nil {
		s.discard(msg)
		return nil, fmt.Errorf("save image: %w", err)
	}
	if err := s.messages.SetImagePath(msg.MessageID, path); err != nil {
		s.discard(msg)
		if rmErr := os.Remove(path); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", path).Msg("remove orphaned image")
		}
		return nil, fmt.Errorf("store image path: %w", err)
	}
	msg.ImagePath = &path
	msg.ContainsImage = true
	metrics.RecordMessage("image")
	s.publish(msg)
	return msg, nil
}

// discard removes a message whose image could not be stored.
func (s *ChatService) discard(msg *models.Message) {
	if err := s.messages.Delete(msg.MessageID); err != nil {
		log.Error().Err(err).Int("message_id", msg.MessageID).Msg("remove message without image")
	}
}

func (s *ChatService) newMessage(member *models.ChatMember, text string, replyTo *int) *models.Message {
	memberID := member.ChatMemberID
	return &models.Message{
		ChatMemberID: &memberID,
		Text:         text,
		TimeSent:     s.now().UTC().Truncate(time.Second),
		ReplyTo:      replyTo,
		ChatID:       member.ChatID,
		ChatMember:   member,
	}
}

func (s *ChatService) publish(msg *models.Message) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(msg.ChatID, msg); err != nil {
		log.Error().Err(err).Int("chat_id", msg.ChatID).Int("message_id", msg.MessageID).Msg("publish message")
	}
}

func (s *ChatService) members(chatID int) ([]*models.ChatMember, error) {
	ok, err := s.chats.Exists(chatID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChatNotFound
	}
	return s.chats.ListMembers(chatID)
}

func containsUser(members []*models.ChatMember, userID int) bool {
	for _, m := range members {
		if m.UserID != nil && *m.UserID == userID {
			return true
		}
	}
	return false
}
