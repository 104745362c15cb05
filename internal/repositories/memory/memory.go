// Package memory keeps every repository in process. It backs DB_ENGINE=memory
// and the service and handler tests.
package memory

import (
	"sort"
	"strings"
	"sync"

	"chats/internal/models"
	"chats/internal/repositories"
)

type Store struct {
	mu sync.RWMutex

	users    map[int]*models.User
	profiles map[int]*models.Profile
	chats    map[int]*models.Chat
	members  map[int]*models.ChatMember
	messages map[int]*models.Message

	nextUser, nextChat, nextMember, nextMessage int
}

func NewStore() *Store {
	return &Store{
		users:    map[int]*models.User{},
		profiles: map[int]*models.Profile{},
		chats:    map[int]*models.Chat{},
		members:  map[int]*models.ChatMember{},
		messages: map[int]*models.Message{},
	}
}

func (s *Store) Users() repositories.UserRepository       { return userRepo{s} }
func (s *Store) Chats() repositories.ChatRepository       { return chatRepo{s} }
func (s *Store) Messages() repositories.MessageRepository { return messageRepo{s} }

// copies so callers never share state with the store

func copyProfile(p *models.Profile) *models.Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (s *Store) user(id int) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	c := *u
	c.Profile = copyProfile(s.profiles[id])
	return &c
}

func (s *Store) member(m *models.ChatMember) *models.ChatMember {
	c := *m
	if m.UserID != nil {
		uid := *m.UserID
		c.UserID = &uid
		c.User = s.user(uid)
	}
	if chat, ok := s.chats[m.ChatID]; ok {
		c.Chat = chat.Summary()
	}
	return &c
}

func (s *Store) chat(id int) *models.Chat {
	ch, ok := s.chats[id]
	if !ok {
		return nil
	}
	c := *ch
	c.Members = []*models.ChatMember{}
	for _, id := range sortedKeys(s.members) {
		if m := s.members[id]; m.ChatID == c.ChatID {
			c.Members = append(c.Members, s.member(m))
		}
	}
	return &c
}

func (s *Store) message(id int) *models.Message {
	m, ok := s.messages[id]
	if !ok {
		return nil
	}
	c := *m
	if m.ChatMemberID != nil {
		if cm, ok := s.members[*m.ChatMemberID]; ok {
			c.ChatID = cm.ChatID
		}
	}
	return &c
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

type userRepo struct{ s *Store }

func (r userRepo) Create(user *models.User, profile *models.Profile) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	s.nextUser++
	user.UserID = s.nextUser
	profile.UserID = user.UserID

	stored := *user
	stored.Profile = nil
	s.users[user.UserID] = &stored
	s.profiles[user.UserID] = copyProfile(profile)
	user.Profile = profile
	return nil
}

func (r userRepo) GetByID(id int) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u := r.s.user(id); u != nil {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (r userRepo) GetByUsername(username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, u := range r.s.users {
		if u.Username == username {
			return r.s.user(id), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r userRepo) List() ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.filter(func(int) bool { return true }), nil
}

func (r userRepo) ListNotInChat(chatID int) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	in := map[int]bool{}
	for _, m := range r.s.members {
		if m.ChatID == chatID && m.UserID != nil {
			in[*m.UserID] = true
		}
	}
	return r.filter(func(id int) bool { return !in[id] }), nil
}

// filter expects the caller to hold the store lock.
func (r userRepo) filter(keep func(id int) bool) []*models.User {
	out := []*models.User{}
	for _, id := range sortedKeys(r.s.users) {
		if keep(id) {
			out = append(out, r.s.user(id))
		}
	}
	return out
}

func (r userRepo) Delete(id int) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.users, id)
	delete(s.profiles, id)
	for _, m := range s.members {
		if m.UserID != nil && *m.UserID == id {
			m.UserID = nil
		}
	}
	return nil
}

func (r userRepo) GetProfile(userID int) (*models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.profiles[userID]; ok {
		return copyProfile(p), nil
	}
	return nil, repositories.ErrNotFound
}

func (r userRepo) UpdateProfile(userID int, upd models.ProfileUpdate) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	if upd.DateOfBirth != nil {
		dob := *upd.DateOfBirth
		p.DateOfBirth = &dob
	}
	return copyProfile(p), nil
}

func (r userRepo) SetProfilePicture(userID int, path string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	p.ProfilePicPath = &path
	return nil
}

type chatRepo struct{ s *Store }

func (r chatRepo) Create(chat *models.Chat, creatorID int) (*models.ChatMember, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextChat++
	chat.ChatID = s.nextChat
	s.chats[chat.ChatID] = &models.Chat{ChatID: chat.ChatID, Name: chat.Name, CreateDate: chat.CreateDate}
	return s.addMember(chat.ChatID, creatorID, true), nil
}

func (s *Store) addMember(chatID, userID int, isCreator bool) *models.ChatMember {
	s.nextMember++
	uid := userID
	m := &models.ChatMember{
		ChatMemberID:  s.nextMember,
		UserID:        &uid,
		ChatID:        chatID,
		DateWhenAdded: models.Today(),
		IsCreator:     isCreator,
	}
	s.members[m.ChatMemberID] = m
	return s.member(m)
}

func (r chatRepo) Exists(chatID int) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.chats[chatID]
	return ok, nil
}

func (r chatRepo) GetByID(chatID int) (*models.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c := r.s.chat(chatID); c != nil {
		return c, nil
	}
	return nil, repositories.ErrNotFound
}

func (r chatRepo) ListForUser(userID int) ([]*models.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	in := map[int]bool{}
	for _, m := range r.s.members {
		if m.UserID != nil && *m.UserID == userID {
			in[m.ChatID] = true
		}
	}
	out := []*models.Chat{}
	for _, id := range sortedKeys(r.s.chats) {
		if in[id] {
			out = append(out, r.s.chat(id))
		}
	}
	return out, nil
}

func (r chatRepo) AddMember(chatID, userID int, isCreator bool) (*models.ChatMember, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chatID]; !ok {
		return nil, repositories.ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return nil, repositories.ErrNotFound
	}
	return s.addMember(chatID, userID, isCreator), nil
}

func (r chatRepo) GetMember(chatID, userID int) (*models.ChatMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range sortedKeys(r.s.members) {
		m := r.s.members[id]
		if m.ChatID == chatID && m.UserID != nil && *m.UserID == userID {
			return r.s.member(m), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r chatRepo) ListMembers(chatID int) ([]*models.ChatMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*models.ChatMember{}
	for _, id := range sortedKeys(r.s.members) {
		if m := r.s.members[id]; m.ChatID == chatID {
			out = append(out, r.s.member(m))
		}
	}
	return out, nil
}

type messageRepo struct{ s *Store }

func (r messageRepo) Create(msg *models.Message) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMessage++
	msg.MessageID = s.nextMessage
	stored := *msg
	stored.ChatMember, stored.ParentMessage = nil, nil
	s.messages[msg.MessageID] = &stored
	return nil
}

func (r messageRepo) SetImagePath(messageID int, path string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[messageID]
	if !ok {
		return repositories.ErrNotFound
	}
	m.ImagePath = &path
	return nil
}

func (r messageRepo) Delete(messageID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[messageID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.messages, messageID)
	return nil
}

func (r messageRepo) GetByID(messageID int) (*models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if m := r.s.message(messageID); m != nil {
		return m, nil
	}
	return nil, repositories.ErrNotFound
}

func (r messageRepo) GetByIDs(ids []int) ([]*models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*models.Message{}
	for _, id := range ids {
		if m := r.s.message(id); m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r messageRepo) ListForChat(chatID, offset, limit int) ([]*models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*models.Message
	for id := range r.s.messages {
		if m := r.s.message(id); m.ChatID == chatID {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].TimeSent.Equal(all[j].TimeSent) {
			return all[i].TimeSent.After(all[j].TimeSent)
		}
		return all[i].MessageID > all[j].MessageID
	})
	if offset >= len(all) {
		return []*models.Message{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
