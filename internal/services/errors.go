package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUserTaken          = errors.New("username or email taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrForbidden          = errors.New("not allowed to manage this user")
	ErrNothingToUpdate    = errors.New("no profile fields to update")
	ErrNoImage            = errors.New("no image stored")

	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotChatMember   = errors.New("user is not a member of this chat")
	ErrAlreadyMember   = errors.New("user is already a member of this chat")
	ErrEmptyMessage    = errors.New("message text is required")
	ErrInvalidReply    = errors.New("replied message is not in this chat")
	ErrInvalidPaging   = errors.New("invalid message range")
)
