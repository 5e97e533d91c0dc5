package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chocobaby727/taskhub/internal/config"
	"github.com/chocobaby727/taskhub/internal/domain/user"
	"github.com/chocobaby727/taskhub/internal/security"
	"github.com/gin-gonic/gin"

	"github.com/chocobaby727/taskhub/internal/http/middlewares"
)

type UserStore interface {
	Create(ctx context.Context, req user.CreateUserRequest, passwordHash string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type TokenIssuer interface {
	IssueAccessToken(username string, userID int64, role string) (string, error)
}

type UsersHandler struct {
	users UserStore
	jwt   TokenIssuer
}

func NewUsersHandler(users UserStore, jwt TokenIssuer) *UsersHandler {
	return &UsersHandler{
		users: users,
		jwt:   jwt,
	}
}

type tokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// Register creates a user from the registration payload. The plaintext
// password never leaves this handler unhashed.
func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, req, hash)

	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			RespondConflict(ctx, "username_taken", "Username is already in use.")
			return
		}

		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

// Token is the OAuth2 password-flow endpoint: form-encoded credentials in,
// bearer token out. Unknown user, bad password and inactive account are all
// the same opaque 401.
func (h *UsersHandler) Token(ctx *gin.Context) {
	var req tokenRequest

	if !BindForm(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByUsername(cctx, req.Username)
	if err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
		return
	}

	if !foundUser.IsActive {
		RespondUnauthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
		return
	}

	accessToken, err := h.jwt.IssueAccessToken(foundUser.Username, foundUser.ID, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}

// Me returns the caller's own profile, re-read from storage.
func (h *UsersHandler) Me(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, principal.UserID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// ChangePassword replaces the caller's password in place.
func (h *UsersHandler) ChangePassword(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req changePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// make sure the account still exists before rehashing
	_, err := h.users.GetByID(cctx, principal.UserID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not change password")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	err = h.users.UpdatePassword(cctx, principal.UserID, hash)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not change password")
		return
	}

	ctx.Status(http.StatusNoContent)
}
