package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"chats/internal/middleware"
	"chats/internal/models"
	"chats/internal/realtime"
	"chats/internal/services"
)

type ChatHandler struct {
	service  *services.ChatService
	auth     middleware.TokenAuthenticator
	hub      *realtime.ChatHub
	upgrader websocket.Upgrader
}

func NewChatHandler(service *services.ChatService, auth middleware.TokenAuthenticator, hub *realtime.ChatHub, allowedOrigins []string) *ChatHandler {
	return &ChatHandler{
		service: service,
		auth:    auth,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// @Summary   Create a chat
// @Tags      chat
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      models.ChatAdd  true  "Chat"
// @Success   201   {object}  models.Chat
// @Failure   422   {object}  errorResponse
// @Router    /chat/add [post]
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req models.ChatAdd
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	chat, err := h.service.CreateChat(currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chat)
}

// @Summary   Add a member to a chat
// @Tags      chat
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      models.ChatMemberAdd  true  "Chat and user"
// @Success   201   {object}  models.ChatMember
// @Failure   403   {object}  errorResponse
// @Failure   404   {object}  errorResponse
// @Router    /chat/add_member [post]
func (h *ChatHandler) AddMember(c *gin.Context) {
	var req models.ChatMemberAdd
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	member, err := h.service.AddMember(currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// @Summary   Chats of the current user
// @Tags      chat
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  models.Chat
// @Router    /chat/list [get]
func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.service.ListChats(currentUser(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// @Summary      A chat
// @Description  A websocket upgrade on this route joins the live chat instead, see Stream.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        chat_id  path      int  true  "Chat ID"
// @Success      200      {object}  models.Chat
// @Failure      404      {object}  errorResponse
// @Router       /chat/{chat_id} [get]
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatID, ok := intParam(c, "chat_id")
	if !ok {
		return
	}
	chat, err := h.service.GetChat(chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// @Summary   Users that can still be added to a chat
// @Tags      chat
// @Produce   json
// @Security  BearerAuth
// @Param     chat_id  path     int  true  "Chat ID"
// @Success   200      {array}  models.User
// @Failure   403      {object}  errorResponse
// @Failure   404      {object}  errorResponse
// @Router    /chat/get_potential_members/{chat_id} [get]
func (h *ChatHandler) PotentialMembers(c *gin.Context) {
	chatID, ok := intParam(c, "chat_id")
	if !ok {
		return
	}
	users, err := h.service.PotentialMembers(currentUser(c), chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      Chat history
// @Description  Newest first. Skips index_from_the_top messages and returns at most no_of_messages_to_fetch.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        chat_id                  path     int  true   "Chat ID"
// @Param        index_from_the_top       query    int  true   "Offset from the newest message"
// @Param        no_of_messages_to_fetch  query    int  false  "Page size (default 10)"
// @Success      200                      {array}  models.Message
// @Failure      403                      {object}  errorResponse
// @Failure      422                      {object}  errorResponse
// @Router       /chat/messages/{chat_id} [get]
func (h *ChatHandler) Messages(c *gin.Context) {
	chatID, ok := intParam(c, "chat_id")
	if !ok {
		return
	}
	offset, ok := intQuery(c, "index_from_the_top", "")
	if !ok {
		return
	}
	limit, ok := intQuery(c, "no_of_messages_to_fetch", "10")
	if !ok {
		return
	}
	msgs, err := h.service.Messages(currentUser(c), chatID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// @Summary   Image attached to a message
// @Tags      chat
// @Produce   png
// @Security  BearerAuth
// @Param     message_id  path  int  true  "Message ID"
// @Success   200
// @Failure   403  {object}  errorResponse
// @Failure   404  {object}  errorResponse
// @Router    /chat/image/{message_id} [get]
func (h *ChatHandler) MessageImage(c *gin.Context) {
	messageID, ok := intParam(c, "message_id")
	if !ok {
		return
	}
	path, err := h.service.MessageImage(currentUser(c), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.File(path)
}

// Stream serves the live chat. Requests that are not websocket upgrades fall
// through to the next handler in the chain.
//
// The token is read from ?token= since browsers cannot set headers on a
// websocket handshake. After the upgrade, text frames carry
// {"message": "...", "reply_to": id} and binary frames carry a PNG image.
func (h *ChatHandler) Stream(c *gin.Context) {
	if !websocket.IsWebSocketUpgrade(c.Request) {
		return
	}
	c.Abort()

	token := c.Query("token")
	if token == "" {
		token = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	user, err := h.auth.UserFromToken(token)
	if err != nil {
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}

	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.String(http.StatusNotFound, "Chat does not exist")
		return
	}
	member, err := h.service.EnsureMember(user, chatID)
	switch {
	case errors.Is(err, services.ErrChatNotFound):
		c.String(http.StatusNotFound, "Chat does not exist")
		return
	case errors.Is(err, services.ErrNotChatMember):
		c.String(http.StatusNotFound, "User is not member of the chat")
		return
	case err != nil:
		log.Error().Err(err).Int("chat_id", chatID).Msg("check chat membership")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Int("chat_id", chatID).Msg("websocket upgrade")
		return
	}
	log.Info().Int("chat_id", chatID).Int("user_id", user.UserID).Msg("joined live chat")
	realtime.NewClient(conn, chatID).Serve(h.hub, h.frameHandler(member))
	log.Info().Int("chat_id", chatID).Int("user_id", user.UserID).Msg("left live chat")
}

var errBadFrame = errors.New("invalid message format")

func (h *ChatHandler) frameHandler(member *models.ChatMember) realtime.FrameHandler {
	return func(messageType int, data []byte) []byte {
		var err error
		switch messageType {
		case websocket.TextMessage:
			err = h.receiveText(member, data)
		case websocket.BinaryMessage:
			_, err = h.service.SendImage(member, bytes.NewReader(data))
		default:
			return nil
		}
		if err == nil {
			return nil
		}
		return errorFrame(err)
	}
}

func (h *ChatHandler) receiveText(member *models.ChatMember, data []byte) error {
	var in models.IncomingMessage
	if err := json.Unmarshal(data, &in); err != nil {
		return errBadFrame
	}
	if in.Message == nil {
		return services.ErrEmptyMessage
	}
	_, err := h.service.SendText(member, *in.Message, in.ReplyTo)
	return err
}

func errorFrame(err error) []byte {
	detail := "Invalid message format."
	if !errors.Is(err, errBadFrame) {
		var known bool
		_, detail, known = lookupError(err)
		if !known {
			log.Error().Err(err).Msg("handle chat frame")
		}
	}
	out, _ := json.Marshal(errorResponse{Detail: detail})
	return out
}
