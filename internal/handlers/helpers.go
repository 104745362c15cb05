package handlers

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"chats/internal/middleware"
	"chats/internal/models"
	"chats/internal/services"
	"chats/internal/storage"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

var errorStatuses = []struct {
	err    error
	status int
	detail string
}{
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Incorrect username or password"},
	{services.ErrUserTaken, http.StatusBadRequest, "Username or email taken."},
	{services.ErrUserNotFound, http.StatusNotFound, "User with the given ID was not found in the DB."},
	{services.ErrProfileNotFound, http.StatusNotFound, "Profile with the given ID was not found in the DB."},
	{services.ErrForbidden, http.StatusForbidden, "Only the user or an admin can change this profile."},
	{services.ErrChatNotFound, http.StatusNotFound, "Chat with the given ID was not found in the DB."},
	{services.ErrMessageNotFound, http.StatusNotFound, "Message with the given ID was not found in the DB."},
	{services.ErrNotChatMember, http.StatusForbidden, "Currently authorized user is not a member of the chat. Only chat members can add new members."},
	{services.ErrAlreadyMember, http.StatusForbidden, "The user is already a member of the given chat."},
	{services.ErrNoImage, http.StatusNotFound, "There is no picture associated with the given message."},
	{services.ErrEmptyMessage, http.StatusUnprocessableEntity, "Message text must not be empty."},
	{services.ErrInvalidReply, http.StatusUnprocessableEntity, "Replied message does not belong to this chat."},
	{services.ErrInvalidPaging, http.StatusUnprocessableEntity, "Invalid message range."},
	{storage.ErrOutsideRoot, http.StatusNotFound, "File not found."},
	{os.ErrNotExist, http.StatusNotFound, "File not found."},
}

// lookupError finds the status and detail registered for err.
func lookupError(err error) (int, string, bool) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.detail, true
		}
	}
	return http.StatusInternalServerError, "Internal server error", false
}

// respondError writes the {"detail": ...} body matching err. Unknown errors are logged and become 500.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNothingToUpdate) {
		// 304 carries no body
		c.Status(http.StatusNotModified)
		return
	}
	status, detail, known := lookupError(err)
	if !known {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(status, errorResponse{Detail: detail})
}

func validationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
}

// intParam reads a positive integer path parameter, answering 422 otherwise.
func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: name + " must be a positive integer"})
		return 0, false
	}
	return n, true
}

func intQuery(c *gin.Context, name, def string) (int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok {
		raw = def
	}
	if raw == "" {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: name + " is required"})
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: name + " must be an integer"})
		return 0, false
	}
	return n, true
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}
