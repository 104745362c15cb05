package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chats/internal/models"
)

func newMock(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, driver), mock
}

var userColumns = []string{
	"user_id", "username", "email", "hashed_password", "create_date", "role",
	"first_name", "last_name", "profile_pic_path", "date_of_birth",
}

func TestUserCreateInsertsUserAndProfile(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users \(username, email, hashed_password, create_date, role\)`).
		WithArgs("ann", "ann@example.com", "hash", sqlmock.AnyArg(), int64(models.RoleUser)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs(int64(7), "Ann", "Lee", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &models.User{Username: "ann", Email: "ann@example.com", HashedPassword: "hash", CreateDate: models.Today(), Role: models.RoleUser}
	profile := &models.Profile{FirstName: "Ann", LastName: "Lee"}
	require.NoError(t, repo.Create(user, profile))
	assert.Equal(t, 7, user.UserID)
	assert.Equal(t, 7, profile.UserID)
	assert.Same(t, profile, user.Profile)
}

func TestUserCreateDuplicate(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ann' for key 'ix_users_username'"})
	mock.ExpectRollback()

	err := repo.Create(&models.User{Username: "ann"}, &models.Profile{})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserGetByIDLoadsProfile(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewUserRepository(db)

	created := time.Date(2024, 7, 29, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM users u\s+LEFT JOIN profiles p ON p.user_id = u.user_id\s+WHERE u.user_id = \?`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(3, "bob", "bob@example.com", "hash", created, 2, "Bob", "Stone", "/fs/auth/3/profile_picture/b.png", created))

	u, err := repo.GetByID(3)
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, models.RoleAdmin, u.Role)
	require.NotNil(t, u.Profile)
	assert.Equal(t, "Stone", u.Profile.LastName)
	require.NotNil(t, u.Profile.ProfilePicPath)
	assert.Equal(t, "/fs/auth/3/profile_picture/b.png", *u.Profile.ProfilePicPath)
	assert.Equal(t, "2024-07-29", u.Profile.DateOfBirth.String())
}

func TestUserGetByUsernameNotFound(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewUserRepository(db)

	mock.ExpectQuery(`WHERE u.username = \?`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDeleteMissing(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewUserRepository(db)

	mock.ExpectExec(`DELETE FROM users WHERE user_id = \?`).WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(9), ErrNotFound)
}

func TestUserUpdateProfileOnlyTouchesGivenFields(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewUserRepository(db)

	name := "Anna"
	mock.ExpectExec(`UPDATE profiles SET first_name = \? WHERE user_id = \?`).
		WithArgs(name, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM profiles`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "first_name", "last_name", "profile_pic_path", "date_of_birth"}).
			AddRow(1, "Anna", "Lee", nil, nil))

	p, err := repo.UpdateProfile(1, models.ProfileUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Anna", p.FirstName)
	assert.Nil(t, p.DateOfBirth)
}

func TestChatCreatePostgresUsesReturning(t *testing.T) {
	db, mock := newMock(t, "postgres")
	repo := NewChatRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO chats \(name, create_date\) VALUES \(\$1, \$2\) RETURNING chat_id`).
		WithArgs("general", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"chat_id"}).AddRow(4))
	mock.ExpectQuery(`INSERT INTO chat_members .* RETURNING chat_member_id`).
		WithArgs(5, 4, sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows([]string{"chat_member_id"}).AddRow(11))
	mock.ExpectCommit()

	chat := &models.Chat{Name: "general", CreateDate: models.Today()}
	member, err := repo.Create(chat, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, chat.ChatID)
	assert.Equal(t, 11, member.ChatMemberID)
	assert.True(t, member.IsCreator)
	require.NotNil(t, member.UserID)
	assert.Equal(t, 5, *member.UserID)
}

var memberColumns = []string{
	"chat_member_id", "user_id", "chat_id", "date_when_added", "is_creator", "chat_name",
	"u_username", "u_email", "u_create_date", "u_role",
	"p_first_name", "p_last_name", "p_profile_pic_path", "p_date_of_birth",
}

func TestChatListForUserAttachesMembers(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewChatRepository(db)

	day := time.Date(2024, 8, 7, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT c.chat_id, c.name, c.create_date\s+FROM chats c`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"chat_id", "name", "create_date"}).
			AddRow(1, "one", day).
			AddRow(2, "two", day))
	mock.ExpectQuery(`WHERE cm.chat_id IN \(\?, \?\) ORDER BY cm.chat_member_id`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows(memberColumns).
			AddRow(1, 1, 1, day, true, "one", "ann", "ann@example.com", day, 1, "Ann", "Lee", nil, nil).
			AddRow(2, nil, 1, day, false, "one", nil, nil, nil, nil, nil, nil, nil, nil).
			AddRow(3, 1, 2, day, true, "two", "ann", "ann@example.com", day, 1, "Ann", "Lee", nil, nil))

	chats, err := repo.ListForUser(1)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	require.Len(t, chats[0].Members, 2)
	assert.Equal(t, "ann", chats[0].Members[0].User.Username)
	assert.Equal(t, "Ann", chats[0].Members[0].User.Profile.FirstName)
	assert.Nil(t, chats[0].Members[1].UserID)
	assert.Nil(t, chats[0].Members[1].User)
	require.Len(t, chats[1].Members, 1)
	assert.Equal(t, "two", chats[1].Members[0].Chat.Name)
}

func TestChatListForUserEmpty(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewChatRepository(db)

	mock.ExpectQuery(`FROM chats c`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"chat_id", "name", "create_date"}))

	chats, err := repo.ListForUser(1)
	require.NoError(t, err)
	assert.Empty(t, chats)
	assert.NotNil(t, chats)
}

func TestChatExists(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewChatRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM chats WHERE chat_id = \?`).WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := repo.Exists(8)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMessageListForChat(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewMessageRepository(db)

	sent := time.Date(2024, 8, 7, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE cm.chat_id = \?\s+ORDER BY m.time_sent DESC, m.message_id DESC\s+LIMIT \? OFFSET \?`).
		WithArgs(3, 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"message_id", "chat_member_id", "text", "time_sent", "reply_to", "image_path", "chat_id"}).
			AddRow(31, 4, "", sent, nil, "/fs/chat_messages/1/3/31/ABC.png", 3).
			AddRow(30, 4, "hi", sent.Add(-time.Minute), 29, nil, 3))

	msgs, err := repo.ListForChat(3, 20, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].HasImage())
	assert.False(t, msgs[1].HasImage())
	require.NotNil(t, msgs[1].ReplyTo)
	assert.Equal(t, 29, *msgs[1].ReplyTo)
	assert.Equal(t, 3, msgs[1].ChatID)
}

func TestMessageCreateMySQL(t *testing.T) {
	db, mock := newMock(t, "mysql")
	repo := NewMessageRepository(db)

	memberID := 4
	mock.ExpectExec(`INSERT INTO messages \(chat_member_id, text, time_sent, reply_to, image_path\)`).
		WithArgs(int64(4), "hello", sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(12, 1))

	msg := &models.Message{ChatMemberID: &memberID, Text: "hello", TimeSent: time.Now()}
	require.NoError(t, repo.Create(msg))
	assert.Equal(t, 12, msg.MessageID)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestMessageDelete(t *testing.T) {
	db, mock := newMock(t, "postgres")
	repo := NewMessageRepository(db)

	mock.ExpectExec(`DELETE FROM messages WHERE message_id = \$1`).WithArgs(12).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM messages WHERE message_id = \$1`).WithArgs(13).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(12))
	assert.ErrorIs(t, repo.Delete(13), ErrNotFound)
}
