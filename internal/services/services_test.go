package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chats/internal/authz"
	"chats/internal/models"
	"chats/internal/repositories/memory"
	"chats/internal/storage"
)

type recordingEmail struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (r *recordingEmail) SendWelcomeEmail(email, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, email)
	return r.err
}

type recordingPublisher struct {
	published []*models.Message
}

func (p *recordingPublisher) Publish(_ int, msg *models.Message) error {
	p.published = append(p.published, msg)
	return nil
}

type fixture struct {
	store  *memory.Store
	auth   AuthService
	users  UserService
	chats  *ChatService
	email  *recordingEmail
	pub    *recordingPublisher
	files  *storage.FileStorage
	defPic string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	tokens, err := authz.NewTokenManager("secret", "HS256", time.Hour)
	require.NoError(t, err)
	files, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	defPic := filepath.Join(t.TempDir(), "default.png")
	require.NoError(t, os.WriteFile(defPic, []byte("default"), 0o644))

	auth := &authService{users: store.Users(), tokens: tokens, cost: bcrypt.MinCost}
	email := &recordingEmail{}
	pub := &recordingPublisher{}
	chats := NewChatService(store.Chats(), store.Messages(), store.Users(), files)
	chats.SetPublisher(pub)
	return &fixture{
		store:  store,
		auth:   auth,
		users:  NewUserService(store.Users(), auth, email, files, defPic),
		chats:  chats,
		email:  email,
		pub:    pub,
		files:  files,
		defPic: defPic,
	}
}

func (f *fixture) register(t *testing.T, username string) *models.User {
	t.Helper()
	dob, err := models.ParseDate("1990-01-02")
	require.NoError(t, err)
	u, err := f.users.Register(models.RegisterRequest{
		UserData:    models.UserAdd{Username: username, Email: username + "@example.com", PlainTextPassword: "pw-" + username},
		ProfileData: models.ProfileAdd{FirstName: strings.ToUpper(username), LastName: "Test", DateOfBirth: &dob},
	})
	require.NoError(t, err)
	return u
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ann")

	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "pw-ann", u.HashedPassword)
	assert.Equal(t, []string{"ann@example.com"}, f.email.sent)

	got, err := f.auth.Authenticate("ann", "pw-ann")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, got.UserID)

	_, err = f.auth.Authenticate("ann", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Authenticate("nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann")

	dob := models.Today()
	_, err := f.users.Register(models.RegisterRequest{
		UserData:    models.UserAdd{Username: "ann", Email: "other@example.com", PlainTextPassword: "x"},
		ProfileData: models.ProfileAdd{FirstName: "A", LastName: "B", DateOfBirth: &dob},
	})
	assert.ErrorIs(t, err, ErrUserTaken)
}

func TestRegisterSurvivesEmailFailure(t *testing.T) {
	f := newFixture(t)
	f.email.err = errors.New("smtp down")
	u := f.register(t, "ann")
	assert.NotZero(t, u.UserID)
}

func TestTokenRoundTrip(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ann")

	tok, err := f.auth.IssueToken(u)
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	got, err := f.auth.UserFromToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Username)

	require.NoError(t, f.users.DeleteUser(u.UserID))
	_, err = f.auth.UserFromToken(tok.AccessToken)
	assert.ErrorIs(t, err, authz.ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ann")

	_, err := f.users.UpdateProfile(u.UserID, models.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	blank := "  "
	_, err = f.users.UpdateProfile(u.UserID, models.ProfileUpdate{FirstName: &blank})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	last := "Smith"
	p, err := f.users.UpdateProfile(u.UserID, models.ProfileUpdate{LastName: &last})
	require.NoError(t, err)
	assert.Equal(t, "Smith", p.LastName)
	assert.Equal(t, "ANN", p.FirstName)
}

func TestProfilePicture(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	bob := f.register(t, "bob")

	path, err := f.users.ProfilePicturePath(ann.UserID)
	require.NoError(t, err)
	assert.Equal(t, f.defPic, path)

	err = f.users.SaveProfilePicture(bob, ann.UserID, "me.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.users.SaveProfilePicture(ann, ann.UserID, "me.png", strings.NewReader("x")))
	path, err = f.users.ProfilePicturePath(ann.UserID)
	require.NoError(t, err)
	assert.Equal(t, "me.png", filepath.Base(path))

	admin := &models.User{UserID: 99, Role: models.RoleAdmin}
	require.NoError(t, f.users.SaveProfilePicture(admin, bob.UserID, "b.png", strings.NewReader("y")))

	_, err = f.users.ProfilePicturePath(12345)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateChatAddsCreator(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")

	chat, err := f.chats.CreateChat(ann, models.ChatAdd{Name: " general "})
	require.NoError(t, err)
	assert.Equal(t, "general", chat.Name)
	require.Len(t, chat.Members, 1)
	assert.True(t, chat.Members[0].IsCreator)
	assert.Equal(t, "ann", chat.Members[0].User.Username)

	list, err := f.chats.ListChats(ann.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, chat.ChatID, list[0].ChatID)
}

func TestAddMemberRules(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	bob := f.register(t, "bob")
	eve := f.register(t, "eve")
	chat, err := f.chats.CreateChat(ann, models.ChatAdd{Name: "c"})
	require.NoError(t, err)

	_, err = f.chats.AddMember(ann, models.ChatMemberAdd{ChatID: 999, UserID: bob.UserID})
	assert.ErrorIs(t, err, ErrChatNotFound)

	_, err = f.chats.AddMember(eve, models.ChatMemberAdd{ChatID: chat.ChatID, UserID: bob.UserID})
	assert.ErrorIs(t, err, ErrNotChatMember)

	_, err = f.chats.AddMember(ann, models.ChatMemberAdd{ChatID: chat.ChatID, UserID: 999})
	assert.ErrorIs(t, err, ErrUserNotFound)

	m, err := f.chats.AddMember(ann, models.ChatMemberAdd{ChatID: chat.ChatID, UserID: bob.UserID})
	require.NoError(t, err)
	assert.False(t, m.IsCreator)
	assert.Equal(t, "bob", m.User.Username)
	assert.Equal(t, "c", m.Chat.Name)

	_, err = f.chats.AddMember(bob, models.ChatMemberAdd{ChatID: chat.ChatID, UserID: ann.UserID})
	assert.ErrorIs(t, err, ErrAlreadyMember)

	potential, err := f.chats.PotentialMembers(bob, chat.ChatID)
	require.NoError(t, err)
	require.Len(t, potential, 1)
	assert.Equal(t, "eve", potential[0].Username)

	_, err = f.chats.PotentialMembers(eve, chat.ChatID)
	assert.ErrorIs(t, err, ErrNotChatMember)
}

func TestEnsureMember(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	bob := f.register(t, "bob")
	chat, err := f.chats.CreateChat(ann, models.ChatAdd{Name: "c"})
	require.NoError(t, err)

	_, err = f.chats.EnsureMember(ann, 42)
	assert.ErrorIs(t, err, ErrChatNotFound)
	_, err = f.chats.EnsureMember(bob, chat.ChatID)
	assert.ErrorIs(t, err, ErrNotChatMember)
	m, err := f.chats.EnsureMember(ann, chat.ChatID)
	require.NoError(t, err)
	assert.True(t, m.IsCreator)
}

func TestSendAndPageMessages(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	chat, err := f.chats.CreateChat(ann, models.ChatAdd{Name: "c"})
	require.NoError(t, err)
	member, err := f.chats.EnsureMember(ann, chat.ChatID)
	require.NoError(t, err)

	clock := time.Date(2024, 8, 7, 10, 0, 0, 0, time.UTC)
	f.chats.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	first, err := f.chats.SendText(member, "first", nil)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := f.chats.SendText(member, "filler", nil)
		require.NoError(t, err)
	}
	reply, err := f.chats.SendText(member, "reply", &first.MessageID)
	require.NoError(t, err)
	assert.Equal(t, "first", reply.ParentMessage.Text)
	assert.Len(t, f.pub.published, 6)

	_, err = f.chats.SendText(member, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	missing := 999
	_, err = f.chats.SendText(member, "x", &missing)
	assert.ErrorIs(t, err, ErrInvalidReply)

	page, err := f.chats.Messages(ann, chat.ChatID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "reply", page[0].Text)
	require.NotNil(t, page[0].ParentMessage)
	assert.Equal(t, first.MessageID, page[0].ParentMessage.MessageID)
	assert.Equal(t, "ann", page[0].ChatMember.User.Username)

	page, err = f.chats.Messages(ann, chat.ChatID, 5, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "first", page[0].Text)

	page, err = f.chats.Messages(ann, chat.ChatID, 50, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	_, err = f.chats.Messages(ann, chat.ChatID, -1, 10)
	assert.ErrorIs(t, err, ErrInvalidPaging)
	_, err = f.chats.Messages(ann, chat.ChatID, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPaging)
}

func TestSendImageAndFetch(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	bob := f.register(t, "bob")
	chat, err := f.chats.CreateChat(ann, models.ChatAdd{Name: "c"})
	require.NoError(t, err)
	member, err := f.chats.EnsureMember(ann, chat.ChatID)
	require.NoError(t, err)

	msg, err := f.chats.SendImage(member, strings.NewReader("\x89PNG data"))
	require.NoError(t, err)
	assert.True(t, msg.ContainsImage)
	assert.Equal(t, "", msg.Text)

	path, err := f.chats.MessageImage(ann, msg.MessageID)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG data", string(data))
	assert.Contains(t, filepath.ToSlash(path), "/chat_messages/")

	_, err = f.chats.MessageImage(bob, msg.MessageID)
	assert.ErrorIs(t, err, ErrNotChatMember)

	text, err := f.chats.SendText(member, "plain", nil)
	require.NoError(t, err)
	_, err = f.chats.MessageImage(ann, text.MessageID)
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = f.chats.MessageImage(ann, 4242)
	assert.ErrorIs(t, err, ErrMessageNotFound)

	page, err := f.chats.Messages(ann, chat.ChatID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.False(t, page[0].ContainsImage)
	assert.True(t, page[1].ContainsImage)
}

func TestSendImageFailureLeavesNoMessage(t *testing.T) {
	f := newFixture(t)
	ann := f.register(t, "ann")
	chat, err := f.chats.CreateChat(ann, models.ChatAdd{Name: "c"})
	require.NoError(t, err)
	member, err := f.chats.EnsureMember(ann, chat.ChatID)
	require.NoError(t, err)

	// a plain file where the image directory tree should go
	require.NoError(t, os.WriteFile(filepath.Join(f.files.Root(), "chat_messages"), []byte("x"), 0o644))

	_, err = f.chats.SendImage(member, strings.NewReader("\x89PNG data"))
	require.Error(t, err)

	page, err := f.chats.Messages(ann, chat.ChatID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Empty(t, f.pub.published)
}

func TestWelcomeBodyEscapesUsername(t *testing.T) {
	body := welcomeBody("Chats", `<img src=x onerror="alert(1)">`)
	assert.NotContains(t, body, "<img")
	assert.Contains(t, body, "&lt;img src=x onerror=&#34;alert(1)&#34;&gt;")
	assert.Contains(t, body, "Welcome to Chats,")
}
