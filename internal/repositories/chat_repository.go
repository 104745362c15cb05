package repositories

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"chats/internal/models"
)

type ChatRepository interface {
	// Create inserts the chat and its creator as the first member.
	Create(chat *models.Chat, creatorID int) (*models.ChatMember, error)
	Exists(chatID int) (bool, error)
	GetByID(chatID int) (*models.Chat, error)
	ListForUser(userID int) ([]*models.Chat, error)

	AddMember(chatID, userID int, isCreator bool) (*models.ChatMember, error)
	GetMember(chatID, userID int) (*models.ChatMember, error)
	ListMembers(chatID int) ([]*models.ChatMember, error)
}

type chatRepository struct {
	DB *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &chatRepository{DB: db}
}

const memberSelect = `
	SELECT cm.chat_member_id, cm.user_id, cm.chat_id, cm.date_when_added, cm.is_creator,
	       c.name AS chat_name,
	       u.username AS u_username, u.email AS u_email, u.create_date AS u_create_date, u.role AS u_role,
	       p.first_name AS p_first_name, p.last_name AS p_last_name,
	       p.profile_pic_path AS p_profile_pic_path, p.date_of_birth AS p_date_of_birth
	FROM chat_members cm
	JOIN chats c ON c.chat_id = cm.chat_id
	LEFT JOIN users u ON u.user_id = cm.user_id
	LEFT JOIN profiles p ON p.user_id = cm.user_id
`

type memberRow struct {
	models.ChatMember
	ChatName       string         `db:"chat_name"`
	Username       sql.NullString `db:"u_username"`
	Email          sql.NullString `db:"u_email"`
	CreateDate     models.Date    `db:"u_create_date"`
	Role           sql.NullInt64  `db:"u_role"`
	FirstName      sql.NullString `db:"p_first_name"`
	LastName       sql.NullString `db:"p_last_name"`
	ProfilePicPath *string        `db:"p_profile_pic_path"`
	DateOfBirth    *models.Date   `db:"p_date_of_birth"`
}

func (r memberRow) toModel() *models.ChatMember {
	m := r.ChatMember
	m.Chat = &models.ChatSummary{ChatID: m.ChatID, Name: r.ChatName}
	if m.UserID != nil && r.Username.Valid {
		m.User = &models.User{
			UserID:     *m.UserID,
			Username:   r.Username.String,
			Email:      r.Email.String,
			CreateDate: r.CreateDate,
			Role:       models.Role(r.Role.Int64),
		}
		if r.FirstName.Valid {
			m.User.Profile = &models.Profile{
				UserID:         *m.UserID,
				FirstName:      r.FirstName.String,
				LastName:       r.LastName.String,
				ProfilePicPath: r.ProfilePicPath,
				DateOfBirth:    r.DateOfBirth,
			}
		}
	}
	return &m
}

func (r *chatRepository) Create(chat *models.Chat, creatorID int) (*models.ChatMember, error) {
	tx, err := r.DB.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	chatID, err := insertID(tx, `INSERT INTO chats (name, create_date) VALUES (?, ?)`, "chat_id",
		chat.Name, chat.CreateDate)
	if err != nil {
		return nil, err
	}
	added := models.Today()
	memberID, err := insertID(tx, `
		INSERT INTO chat_members (user_id, chat_id, date_when_added, is_creator)
		VALUES (?, ?, ?, ?)`, "chat_member_id",
		creatorID, chatID, added, true)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	chat.ChatID = chatID
	uid := creatorID
	return &models.ChatMember{
		ChatMemberID:  memberID,
		UserID:        &uid,
		ChatID:        chatID,
		DateWhenAdded: added,
		IsCreator:     true,
		Chat:          chat.Summary(),
	}, nil
}

func (r *chatRepository) Exists(chatID int) (bool, error) {
	var n int
	if err := r.DB.Get(&n, r.DB.Rebind(`SELECT COUNT(*) FROM chats WHERE chat_id = ?`), chatID); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *chatRepository) GetByID(chatID int) (*models.Chat, error) {
	chat := &models.Chat{}
	const q = `SELECT chat_id, name, create_date FROM chats WHERE chat_id = ?`
	if err := r.DB.Get(chat, r.DB.Rebind(q), chatID); err != nil {
		return nil, notFound(err)
	}
	members, err := r.ListMembers(chatID)
	if err != nil {
		return nil, err
	}
	chat.Members = members
	return chat, nil
}

func (r *chatRepository) ListForUser(userID int) ([]*models.Chat, error) {
	const q = `
		SELECT c.chat_id, c.name, c.create_date
		FROM chats c
		WHERE c.chat_id IN (SELECT chat_id FROM chat_members WHERE user_id = ?)
		ORDER BY c.chat_id
	`
	var chats []*models.Chat
	if err := r.DB.Select(&chats, r.DB.Rebind(q), userID); err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return []*models.Chat{}, nil
	}

	ids := make([]int, 0, len(chats))
	byID := make(map[int]*models.Chat, len(chats))
	for _, c := range chats {
		c.Members = []*models.ChatMember{}
		ids = append(ids, c.ChatID)
		byID[c.ChatID] = c
	}
	query, args, err := sqlx.In(memberSelect+"WHERE cm.chat_id IN (?) ORDER BY cm.chat_member_id", ids)
	if err != nil {
		return nil, err
	}
	var rows []memberRow
	if err := r.DB.Select(&rows, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if c, ok := byID[row.ChatID]; ok {
			c.Members = append(c.Members, row.toModel())
		}
	}
	return chats, nil
}

func (r *chatRepository) AddMember(chatID, userID int, isCreator bool) (*models.ChatMember, error) {
	id, err := insertID(r.DB, `
		INSERT INTO chat_members (user_id, chat_id, date_when_added, is_creator)
		VALUES (?, ?, ?, ?)`, "chat_member_id",
		userID, chatID, models.Today(), isCreator)
	if err != nil {
		return nil, err
	}
	return r.getMember("WHERE cm.chat_member_id = ?", id)
}

func (r *chatRepository) GetMember(chatID, userID int) (*models.ChatMember, error) {
	return r.getMember("WHERE cm.chat_id = ? AND cm.user_id = ?", chatID, userID)
}

func (r *chatRepository) getMember(where string, args ...any) (*models.ChatMember, error) {
	var row memberRow
	if err := r.DB.Get(&row, r.DB.Rebind(memberSelect+where), args...); err != nil {
		return nil, notFound(err)
	}
	return row.toModel(), nil
}

func (r *chatRepository) ListMembers(chatID int) ([]*models.ChatMember, error) {
	var rows []memberRow
	if err := r.DB.Select(&rows, r.DB.Rebind(memberSelect+"WHERE cm.chat_id = ? ORDER BY cm.chat_member_id"), chatID); err != nil {
		return nil, err
	}
	members := make([]*models.ChatMember, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toModel())
	}
	return members, nil
}
