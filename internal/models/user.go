package models

type Role int

const (
	RoleUser  Role = 1
	RoleAdmin Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleAdmin:
		return "ADMIN"
	default:
		return "UNKNOWN"
	}
}

type User struct {
	UserID         int    `json:"user_id" db:"user_id"`
	Username       string `json:"username" db:"username"`
	Email          string `json:"email" db:"email"`
	HashedPassword string `json:"-" db:"hashed_password"` // bcrypt, never returned
	CreateDate     Date   `json:"create_date" db:"create_date"`
	Role           Role   `json:"role" db:"role"`

	Profile *Profile `json:"profile" db:"-"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

type Profile struct {
	UserID         int     `json:"user_id" db:"user_id"`
	FirstName      string  `json:"first_name" db:"first_name"`
	LastName       string  `json:"last_name" db:"last_name"`
	ProfilePicPath *string `json:"-" db:"profile_pic_path"`
	DateOfBirth    *Date   `json:"date_of_birth" db:"date_of_birth"`
}

type UserAdd struct {
	Username          string `json:"username" binding:"required,max=100"`
	Email             string `json:"email" binding:"required,email,max=100"`
	PlainTextPassword string `json:"plain_text_password" binding:"required,min=1"`
}

type ProfileAdd struct {
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	DateOfBirth *Date  `json:"date_of_birth" binding:"required"`
}

type RegisterRequest struct {
	UserData    UserAdd    `json:"user_data"`
	ProfileData ProfileAdd `json:"profile_data"`
}

// ProfileUpdate carries only the fields to change.
type ProfileUpdate struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DateOfBirth *Date   `json:"date_of_birth"`
}

func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.DateOfBirth == nil
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
