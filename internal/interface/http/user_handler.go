package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/internal/application"
	"github.com/oksasatya/buytoro/internal/interface/middleware"
	"github.com/oksasatya/buytoro/pkg/response"
)

var userStatus = statusTable{
	application.ErrUserExists:         http.StatusBadRequest,
	application.ErrInvalidCredentials: http.StatusUnauthorized,
	application.ErrUserBlocked:        http.StatusForbidden,
	application.ErrUserNotFound:       http.StatusNotFound,
	application.ErrWrongPassword:      http.StatusBadRequest,
	application.ErrSelfAction:         http.StatusBadRequest,
	application.ErrAccountHasOrders:   http.StatusConflict,
	application.ErrProductNotFound:    http.StatusNotFound,
	application.ErrMediaUnavailable:   http.StatusServiceUnavailable,
}

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name  string `json:"name" binding:"omitempty,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
}

type setBlockedRequest struct {
	Blocked *bool `json:"blocked" binding:"required"`
}

// Register POST /api/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusCreated, toAuth(res), "user registered", nil)
}

// Login POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toAuth(res), "login successful", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.UpdateProfileInput{Name: req.Name, Email: req.Email})
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile updated", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"updated": true}, "password updated", nil)
}

// UploadImage PUT /api/users/profile/image (multipart field "image")
func (h *UserHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "image file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	defer f.Close()

	u, err := h.Svc.UploadImage(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile image updated", nil)
}

func (h *UserHandler) DeleteProfile(c *gin.Context) {
	if err := h.Svc.DeleteAccount(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "account deleted", nil)
}

func (h *UserHandler) Wishlist(c *gin.Context) {
	products, err := h.Svc.Wishlist(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toProducts(products), "wishlist", nil)
}

func (h *UserHandler) AddToWishlist(c *gin.Context) {
	ids, err := h.Svc.AddToWishlist(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("productId"))
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusOK, ids, "added to wishlist", nil)
}

func (h *UserHandler) RemoveFromWishlist(c *gin.Context) {
	ids, err := h.Svc.RemoveFromWishlist(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("productId"))
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusOK, ids, "removed from wishlist", nil)
}

// ListUsers GET /api/users (admin)
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toUsers(users), "users", map[string]any{"total": len(users)})
}

// SearchUsers GET /api/users/search?q=&size= (admin)
func (h *UserHandler) SearchUsers(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	users, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toUsers(users), "search results", map[string]any{"total": len(users)})
}

// SetBlocked PUT /api/users/:id/block (admin)
func (h *UserHandler) SetBlocked(c *gin.Context) {
	var req setBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.SetBlocked(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), *req.Blocked)
	if err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "user updated", nil)
}

// DeleteUser DELETE /api/users/:id (admin)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.Svc.DeleteUser(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		fail(c, h.Logger, userStatus, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}
