package memory

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chats/internal/models"
	"chats/internal/repositories"
)

func addUser(t *testing.T, s *Store, name string) int {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com"}
	require.NoError(t, s.Users().Create(u, &models.Profile{FirstName: name}))
	return u.UserID
}

func TestListNotInChatConsistentWithConcurrentAdds(t *testing.T) {
	s := NewStore()
	owner := addUser(t, s, "owner")
	chat := &models.Chat{Name: "c"}
	_, err := s.Chats().Create(chat, owner)
	require.NoError(t, err)

	var others []int
	for i := 0; i < 20; i++ {
		others = append(others, addUser(t, s, "u"+strconv.Itoa(i)))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, id := range others {
			_, err := s.Chats().AddMember(chat.ChatID, id, false)
			assert.NoError(t, err)
		}
	}()
	for i := 0; i < 50; i++ {
		users, err := s.Users().ListNotInChat(chat.ChatID)
		require.NoError(t, err)
		for _, u := range users {
			assert.NotEqual(t, owner, u.UserID)
		}
	}
	wg.Wait()

	users, err := s.Users().ListNotInChat(chat.ChatID)
	require.NoError(t, err)
	assert.Empty(t, users)

	all, err := s.Users().List()
	require.NoError(t, err)
	assert.Len(t, all, 21)
}

func TestMessageDelete(t *testing.T) {
	s := NewStore()
	owner := addUser(t, s, "owner")
	member, err := s.Chats().Create(&models.Chat{Name: "c"}, owner)
	require.NoError(t, err)

	msg := &models.Message{ChatMemberID: &member.ChatMemberID, Text: "hi", TimeSent: time.Now()}
	require.NoError(t, s.Messages().Create(msg))

	require.NoError(t, s.Messages().Delete(msg.MessageID))
	_, err = s.Messages().GetByID(msg.MessageID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, s.Messages().Delete(msg.MessageID), repositories.ErrNotFound)
}
