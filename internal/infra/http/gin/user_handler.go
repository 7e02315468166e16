package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	appuser "stayflow/internal/app/user"
	domainuser "stayflow/internal/domain/user"
)

type UserHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type UserHandler struct {
	Service *appuser.Service
	Logger  *slog.Logger
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

func newTokenResponse(g appuser.TokenGrant) tokenResponse {
	return tokenResponse{Token: g.Token, ExpiresIn: int64(g.ExpiresIn / time.Second)}
}

func (h UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	grant, err := h.Service.Register(c.Request.Context(), req.Username, req.Password, req.Admin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTokenResponse(grant))
}

func (h UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	grant, err := h.Service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(grant))
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func newUserResponse(u *domainuser.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h UserHandler) Create(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	u, err := h.Service.CreateUser(c.Request.Context(), req.Username, req.Password, domainuser.Role(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(u))
}

type updateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h UserHandler) Update(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	u, err := h.Service.UpdateUser(c.Request.Context(), c.Param("id"), appuser.UpdateParams{
		Username: req.Username,
		Password: req.Password,
		Role:     domainuser.Role(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(u))
}

func (h UserHandler) Delete(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	if err := h.Service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ UserHTTP = UserHandler{}
