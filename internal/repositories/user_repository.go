package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"chats/internal/models"
)

type UserRepository interface {
	// Create inserts the user together with its profile.
	Create(user *models.User, profile *models.Profile) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	List() ([]*models.User, error)
	// ListNotInChat returns users that are not members of the chat.
	ListNotInChat(chatID int) ([]*models.User, error)
	Delete(id int) error

	GetProfile(userID int) (*models.Profile, error)
	UpdateProfile(userID int, upd models.ProfileUpdate) (*models.Profile, error)
	SetProfilePicture(userID int, path string) error
}

type userRepository struct {
	DB *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{DB: db}
}

const userSelect = `
	SELECT u.user_id, u.username, u.email, u.hashed_password, u.create_date, u.role,
	       p.first_name, p.last_name, p.profile_pic_path, p.date_of_birth
	FROM users u
	LEFT JOIN profiles p ON p.user_id = u.user_id
`

type userRow struct {
	models.User
	FirstName      sql.NullString `db:"first_name"`
	LastName       sql.NullString `db:"last_name"`
	ProfilePicPath *string        `db:"profile_pic_path"`
	DateOfBirth    *models.Date   `db:"date_of_birth"`
}

func (r userRow) toModel() *models.User {
	u := r.User
	if r.FirstName.Valid {
		u.Profile = &models.Profile{
			UserID:         u.UserID,
			FirstName:      r.FirstName.String,
			LastName:       r.LastName.String,
			ProfilePicPath: r.ProfilePicPath,
			DateOfBirth:    r.DateOfBirth,
		}
	}
	return &u
}

func (r *userRepository) Create(user *models.User, profile *models.Profile) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertID(tx, `
		INSERT INTO users (username, email, hashed_password, create_date, role)
		VALUES (?, ?, ?, ?, ?)`, "user_id",
		user.Username, user.Email, user.HashedPassword, user.CreateDate, user.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	const q = `
		INSERT INTO profiles (user_id, first_name, last_name, profile_pic_path, date_of_birth)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(tx.Rebind(q), id, profile.FirstName, profile.LastName, profile.ProfilePicPath, profile.DateOfBirth); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	user.UserID = id
	profile.UserID = id
	user.Profile = profile
	return nil
}

func (r *userRepository) getOne(where string, arg any) (*models.User, error) {
	var row userRow
	if err := r.DB.Get(&row, r.DB.Rebind(userSelect+where), arg); err != nil {
		return nil, notFound(err)
	}
	return row.toModel(), nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	return r.getOne("WHERE u.user_id = ?", id)
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	return r.getOne("WHERE u.username = ?", username)
}

func (r *userRepository) list(where string, args ...any) ([]*models.User, error) {
	var rows []userRow
	if err := r.DB.Select(&rows, r.DB.Rebind(userSelect+where+" ORDER BY u.user_id"), args...); err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toModel())
	}
	return users, nil
}

func (r *userRepository) List() ([]*models.User, error) {
	return r.list("")
}

func (r *userRepository) ListNotInChat(chatID int) ([]*models.User, error) {
	return r.list(`WHERE u.user_id NOT IN (
		SELECT cm.user_id FROM chat_members cm WHERE cm.chat_id = ? AND cm.user_id IS NOT NULL
	)`, chatID)
}

func (r *userRepository) Delete(id int) error {
	return affectedOrNotFound(r.DB.Exec(r.DB.Rebind(`DELETE FROM users WHERE user_id = ?`), id))
}

func (r *userRepository) GetProfile(userID int) (*models.Profile, error) {
	const q = `
		SELECT user_id, first_name, last_name, profile_pic_path, date_of_birth
		FROM profiles
		WHERE user_id = ?
	`
	p := &models.Profile{}
	if err := r.DB.Get(p, r.DB.Rebind(q), userID); err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *userRepository) UpdateProfile(userID int, upd models.ProfileUpdate) (*models.Profile, error) {
	var (
		sets []string
		args []any
	)
	if upd.FirstName != nil {
		sets = append(sets, "first_name = ?")
		args = append(args, *upd.FirstName)
	}
	if upd.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, *upd.LastName)
	}
	if upd.DateOfBirth != nil {
		sets = append(sets, "date_of_birth = ?")
		args = append(args, *upd.DateOfBirth)
	}
	if len(sets) > 0 {
		q := fmt.Sprintf("UPDATE profiles SET %s WHERE user_id = ?", strings.Join(sets, ", "))
		args = append(args, userID)
		if _, err := r.DB.Exec(r.DB.Rebind(q), args...); err != nil {
			return nil, err
		}
	}
	return r.GetProfile(userID)
}

func (r *userRepository) SetProfilePicture(userID int, path string) error {
	const q = `UPDATE profiles SET profile_pic_path = ? WHERE user_id = ?`
	return affectedOrNotFound(r.DB.Exec(r.DB.Rebind(q), path, userID))
}
