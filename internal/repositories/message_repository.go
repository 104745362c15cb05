package repositories

import (
	"github.com/jmoiron/sqlx"

	"chats/internal/models"
)

type MessageRepository interface {
	Create(msg *models.Message) error
	SetImagePath(messageID int, path string) error
	Delete(messageID int) error
	GetByID(messageID int) (*models.Message, error)
	GetByIDs(ids []int) ([]*models.Message, error)
	// ListForChat returns messages newest first, skipping offset of them.
	ListForChat(chatID, offset, limit int) ([]*models.Message, error)
}

type messageRepository struct {
	DB *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{DB: db}
}

const messageSelect = `
	SELECT m.message_id, m.chat_member_id, m.text, m.time_sent, m.reply_to, m.image_path,
	       COALESCE(cm.chat_id, 0) AS chat_id
	FROM messages m
	LEFT JOIN chat_members cm ON cm.chat_member_id = m.chat_member_id
`

func (r *messageRepository) Create(msg *models.Message) error {
	id, err := insertID(r.DB, `
		INSERT INTO messages (chat_member_id, text, time_sent, reply_to, image_path)
		VALUES (?, ?, ?, ?, ?)`, "message_id",
		msg.ChatMemberID, msg.Text, msg.TimeSent, msg.ReplyTo, msg.ImagePath)
	if err != nil {
		return err
	}
	msg.MessageID = id
	return nil
}

func (r *messageRepository) SetImagePath(messageID int, path string) error {
	const q = `UPDATE messages SET image_path = ? WHERE message_id = ?`
	return affectedOrNotFound(r.DB.Exec(r.DB.Rebind(q), path, messageID))
}

func (r *messageRepository) Delete(messageID int) error {
	const q = `DELETE FROM messages WHERE message_id = ?`
	return affectedOrNotFound(r.DB.Exec(r.DB.Rebind(q), messageID))
}

func (r *messageRepository) GetByID(messageID int) (*models.Message, error) {
	msg := &models.Message{}
	if err := r.DB.Get(msg, r.DB.Rebind(messageSelect+"WHERE m.message_id = ?"), messageID); err != nil {
		return nil, notFound(err)
	}
	return msg, nil
}

func (r *messageRepository) GetByIDs(ids []int) ([]*models.Message, error) {
	if len(ids) == 0 {
		return []*models.Message{}, nil
	}
	query, args, err := sqlx.In(messageSelect+"WHERE m.message_id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	var out []*models.Message
	if err := r.DB.Select(&out, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepository) ListForChat(chatID, offset, limit int) ([]*models.Message, error) {
	const q = messageSelect + `
		WHERE cm.chat_id = ?
		ORDER BY m.time_sent DESC, m.message_id DESC
		LIMIT ? OFFSET ?
	`
	out := []*models.Message{}
	if err := r.DB.Select(&out, r.DB.Rebind(q), chatID, limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}
