package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chats/internal/models"
	"chats/internal/services"
)

type AdminHandler struct {
	userService services.UserService
}

func NewAdminHandler(userService services.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// @Summary   Whether the current user is an admin
// @Tags      admin
// @Produce   json
// @Security  BearerAuth
// @Success   200  {boolean}  bool
// @Router    /admin/is_admin [get]
func (h *AdminHandler) IsAdmin(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).IsAdmin())
}

// @Summary      Table catalog
// @Description  Every table with its columns, their types and suggested form inputs.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]map[string]models.ColumnInfo
// @Failure      401  {object}  errorResponse
// @Router       /admin/tables [get]
func (h *AdminHandler) Tables(c *gin.Context) {
	c.JSON(http.StatusOK, models.SchemaCatalog())
}

// @Summary   All users
// @Tags      admin
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  models.User
// @Router    /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary   Delete a user
// @Tags      admin
// @Security  BearerAuth
// @Param     user_id  path  int  true  "User ID"
// @Success   204
// @Failure   404  {object}  errorResponse
// @Router    /admin/users/{user_id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, ok := intParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
