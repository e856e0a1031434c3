package handler

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/uniraum/room-booking/internal/config"
	"github.com/uniraum/room-booking/internal/repository"
)

// maxPictureBytes caps profile picture uploads at 5 MB.
const maxPictureBytes = 5 << 20

// UserHandler serves the profile endpoints and the admin user
// management surface.
type UserHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Tokens: t}
}

type profileResp struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

func toProfile(u repository.User) profileResp {
	return profileResp{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture.String,
		CreatedAt:      u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Profile returns the authenticated user's account.
func (h *UserHandler) Profile(c echo.Context) error {
	uid, _ := currentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProfile(u))
}

type updateProfileReq struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UpdateProfile applies a partial self-service update.  Username and
// email uniqueness are checked against other accounts, and a new email
// must stay inside the institutional domain.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, _ := currentUser(c)
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == nil && req.Email == nil && req.Password == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	patch := repository.UserPatch{Password: req.Password}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must not be empty"})
		}
		taken, err := h.Users.UsernameTaken(ctx, name, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if taken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		patch.Username = &name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailInDomain(email, h.Cfg.EmailDomain) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email must belong to the @" + h.Cfg.EmailDomain + " domain"})
		}
		taken, err := h.Users.EmailTaken(ctx, email, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if taken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		patch.Email = &email
	}

	if err := h.Users.Update(ctx, uid, patch, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if req.Password != nil {
		// Refresh tokens issued under the old password stop working.
		// Best effort: the password itself is already rotated.
		_ = h.Tokens.RevokeAllForUser(ctx, uid)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProfile(u))
}

// UploadPicture accepts a multipart image up to 5 MB and stores it as a
// base64 data URL on the user's account.
func (h *UserHandler) UploadPicture(c echo.Context) error {
	uid, _ := currentUser(c)

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file required"})
	}
	if fh.Size > maxPictureBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image exceeds 5MB limit"})
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file must be an image"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read upload failed"})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPictureBytes+1))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read upload failed"})
	}
	if len(data) > maxPictureBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image exceeds 5MB limit"})
	}

	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, uid); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err := h.Users.SetProfilePicture(ctx, uid, sql.NullString{String: dataURL, Valid: true}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save picture failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"profilePicture": dataURL})
}

// DeletePicture clears the stored profile picture.
func (h *UserHandler) DeletePicture(c echo.Context) error {
	uid, _ := currentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, uid); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err := h.Users.SetProfilePicture(ctx, uid, sql.NullString{}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete picture failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile picture removed"})
}

// ----- admin user management -----

func validRole(role string) bool {
	switch role {
	case "student", "teacher", "admin":
		return true
	}
	return false
}

// ListUsers returns every account (admin only).
func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]profileResp, 0, len(users))
	for _, u := range users {
		out = append(out, toProfile(u))
	}
	return c.JSON(http.StatusOK, out)
}

// GetUser returns one account by ID (admin only).
func (h *UserHandler) GetUser(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProfile(u))
}

type createUserReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser lets an admin create an account with any role.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password required"})
	}
	if !emailInDomain(req.Email, h.Cfg.EmailDomain) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email must belong to the @" + h.Cfg.EmailDomain + " domain"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = "student"
	}
	if !validRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be student, teacher or admin"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, toProfile(u))
}

type adminUpdateUserReq struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// UpdateUser applies a partial admin update to any account.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id := c.Param("id")
	var req adminUpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == nil && req.Email == nil && req.Password == nil && req.Role == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	patch := repository.UserPatch{Password: req.Password}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must not be empty"})
		}
		patch.Username = &name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailInDomain(email, h.Cfg.EmailDomain) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email must belong to the @" + h.Cfg.EmailDomain + " domain"})
		}
		patch.Email = &email
	}
	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if !validRole(role) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be student, teacher or admin"})
		}
		patch.Role = &role
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if patch.Username != nil {
		taken, err := h.Users.UsernameTaken(ctx, *patch.Username, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if taken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
	}
	if patch.Email != nil {
		taken, err := h.Users.EmailTaken(ctx, *patch.Email, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if taken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
	}

	if err := h.Users.Update(ctx, id, patch, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if req.Password != nil {
		// An admin-set password invalidates every open session.
		_ = h.Tokens.RevokeAllForUser(ctx, id)
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProfile(u))
}

type updateRoleReq struct {
	Role string `json:"role"`
}

// UpdateRole changes an account's role (admin only).
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id := c.Param("id")
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !validRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be student, teacher or admin"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Users.UpdateRole(ctx, id, role); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "role": role})
}

// DeleteUser removes an account (admin only).
func (h *UserHandler) DeleteUser(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
