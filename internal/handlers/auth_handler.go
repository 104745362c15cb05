package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"chats/internal/models"
	"chats/internal/services"
)

const profilePicField = "profile_pic_file"

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
}

func NewAuthHandler(userService services.UserService, authService services.AuthService) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService}
}

// @Summary      Log in
// @Description  Exchanges username and password for a bearer access token
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  models.Token
// @Failure      401  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		validationError(c, err)
		return
	}
	user, err := h.authService.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Info().Str("username", strings.TrimSpace(req.Username)).Msg("login rejected")
		respondError(c, err)
		return
	}
	token, err := h.authService.IssueToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Int("user_id", user.UserID).Msg("login")
	c.JSON(http.StatusOK, token)
}

// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "User and profile data"
// @Success      201   {object}  models.User
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	user, err := h.userService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary   Current user
// @Tags      auth
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  models.User
// @Failure   401  {object}  errorResponse
// @Router    /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// @Summary   Current user's profile picture
// @Tags      auth
// @Produce   octet-stream
// @Security  BearerAuth
// @Success   200
// @Failure   404  {object}  errorResponse
// @Router    /auth/me/profile_picture [get]
func (h *AuthHandler) MyProfilePicture(c *gin.Context) {
	h.servePicture(c, currentUser(c).UserID)
}

// @Summary   Upload a profile picture
// @Tags      auth
// @Accept    multipart/form-data
// @Security  BearerAuth
// @Param     user_id           path      int   true  "User ID"
// @Param     profile_pic_file  formData  file  true  "Picture"
// @Success   204
// @Failure   403  {object}  errorResponse
// @Failure   404  {object}  errorResponse
// @Failure   422  {object}  errorResponse
// @Router    /auth/register/profile_picture/{user_id} [put]
func (h *AuthHandler) UploadProfilePicture(c *gin.Context) {
	userID, ok := intParam(c, "user_id")
	if !ok {
		return
	}
	fh, err := c.FormFile(profilePicField)
	if err != nil {
		validationError(c, err)
		return
	}
	if strings.TrimSpace(fh.Filename) == "" {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "file name is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	if err := h.userService.SaveProfilePicture(currentUser(c), userID, fh.Filename, f); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Update own profile
// @Description  Only the given, non-blank fields change. 304 when nothing would change.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.ProfileUpdate  true  "Fields to change"
// @Success      200   {object}  models.Profile
// @Success      304
// @Router       /auth/update [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var upd models.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		validationError(c, err)
		return
	}
	profile, err := h.userService.UpdateProfile(currentUser(c).UserID, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// @Summary  A user's profile picture
// @Tags     auth
// @Produce  octet-stream
// @Param    user_id  path  int  true  "User ID"
// @Success  200
// @Failure  404  {object}  errorResponse
// @Router   /auth/profile_picture/{user_id} [get]
func (h *AuthHandler) ProfilePicture(c *gin.Context) {
	userID, ok := intParam(c, "user_id")
	if !ok {
		return
	}
	h.servePicture(c, userID)
}

// @Summary  A profile
// @Tags     auth
// @Produce  json
// @Param    profile_id  path      int  true  "Profile ID"
// @Success  200         {object}  models.Profile
// @Failure  404         {object}  errorResponse
// @Router   /auth/profile/{profile_id} [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	profileID, ok := intParam(c, "profile_id")
	if !ok {
		return
	}
	profile, err := h.userService.GetProfile(profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) servePicture(c *gin.Context, userID int) {
	path, err := h.userService.ProfilePicturePath(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.File(path)
}
