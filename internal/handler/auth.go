package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/kiosk-table-reservation/internal/config"
    "github.com/iliyamo/kiosk-table-reservation/internal/model"
    "github.com/iliyamo/kiosk-table-reservation/internal/repository"
    "github.com/iliyamo/kiosk-table-reservation/internal/utils"
)

// UserFinder is satisfied by the MySQL and memory user repositories.
type UserFinder interface {
    GetByUsername(ctx context.Context, username string) (model.User, error)
}

// AuthHandler issues store-scoped access tokens.
type AuthHandler struct {
    Cfg   config.Config
    Users UserFinder
}

func NewAuthHandler(cfg config.Config, u UserFinder) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	StoreID  int64  `json:"store_id"`
}
type authResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

// Login: verify credentials and return an access token bound to the
// account's store.  Accounts without a store cannot log in.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if u.StoreID == nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is not assigned to a store"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, *u.StoreID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:   userPart{ID: u.ID, Username: u.Username, Name: u.Name, StoreID: *u.StoreID},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
