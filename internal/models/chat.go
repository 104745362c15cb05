package models

import "time"

type Chat struct {
	ChatID     int    `json:"chat_id" db:"chat_id"`
	Name       string `json:"name" db:"name"`
	CreateDate Date   `json:"create_date" db:"create_date"`

	Members []*ChatMember `json:"members" db:"-"`
}

// ChatSummary is a chat without its member list, embedded in ChatMember.
type ChatSummary struct {
	ChatID int    `json:"chat_id"`
	Name   string `json:"name"`
}

func (c *Chat) Summary() *ChatSummary {
	return &ChatSummary{ChatID: c.ChatID, Name: c.Name}
}

type ChatMember struct {
	ChatMemberID  int  `json:"chat_member_id" db:"chat_member_id"`
	UserID        *int `json:"user_id" db:"user_id"` // nil once the user is deleted
	ChatID        int  `json:"chat_id" db:"chat_id"`
	DateWhenAdded Date `json:"date_when_added" db:"date_when_added"`
	IsCreator     bool `json:"is_creator" db:"is_creator"`

	User *User        `json:"user" db:"-"`
	Chat *ChatSummary `json:"chat,omitempty" db:"-"`
}

type Message struct {
	MessageID    int       `json:"message_id" db:"message_id"`
	ChatMemberID *int      `json:"chat_member_id" db:"chat_member_id"`
	Text         string    `json:"text" db:"text"`
	TimeSent     time.Time `json:"time_sent" db:"time_sent"`
	ReplyTo      *int      `json:"reply_to" db:"reply_to"`
	ImagePath    *string   `json:"-" db:"image_path"`

	ChatID        int         `json:"chat_id" db:"chat_id"`
	ContainsImage bool        `json:"contains_image" db:"-"`
	ChatMember    *ChatMember `json:"chat_member,omitempty" db:"-"`
	ParentMessage *Message    `json:"parent_message,omitempty" db:"-"`
}

func (m *Message) HasImage() bool {
	return m.ImagePath != nil && *m.ImagePath != ""
}

type ChatAdd struct {
	Name string `json:"name" binding:"required,max=200"`
}

type ChatMemberAdd struct {
	ChatID int `json:"chat_id" binding:"required"`
	UserID int `json:"user_id" binding:"required"`
}

// IncomingMessage is a text frame sent over the chat websocket.
type IncomingMessage struct {
	Message *string `json:"message"`
	ReplyTo *int    `json:"reply_to"`
}
