package handler

import (
	"errors"
	"net/http"

	"cakeshop/internal/config"
	"cakeshop/internal/domain/model"
	"cakeshop/internal/middleware"
	"cakeshop/internal/repository"
	"cakeshop/internal/usecase"
	auth "cakeshop/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
}

// DIコンストラクタ
func NewAuthHandler(registerUC *auth.RegisterUserUsecase, loginUC *auth.LoginUsecase) *AuthHandler {
	return &AuthHandler{registerUC: registerUC, loginUC: loginUC}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID       int64      `json:"id"`
	Username string     `json:"username,omitempty"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type loginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

// loginLimiter は総当たり対策（nil なら付けない）
func (h *AuthHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository, loginLimiter echo.MiddlewareFunc) {
	g := api.Group("/auth")

	g.POST("/register", h.register)
	if loginLimiter != nil {
		g.POST("/login", h.login, loginLimiter)
	} else {
		g.POST("/login", h.login)
	}
	g.GET("/me", h.me, userGuards(cfg, userRepo)...)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameRequired):
			return badRequest(c, "Username is required")
		case errors.Is(err, auth.ErrInvalidEmailFormat):
			return badRequest(c, "Invalid email format")
		case errors.Is(err, auth.ErrPasswordTooShort):
			return badRequest(c, "Password must be at least 6 characters")
		case errors.Is(err, auth.ErrWeakPassword):
			return badRequest(c, "Password is too weak")
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "Email already registered", Code: usecase.CodeConflict})
		default:
			return writeError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User:    toUserResponse(out.User),
	})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password", Code: usecase.CodeUnauthorized})
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   out.Token,
		User:    toUserResponse(out.User),
	})
}

// トークンの中身をそのまま返す
func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	email, _ := c.Get(middleware.CtxUserEmailKey).(string)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)

	return c.JSON(http.StatusOK, struct {
		Message string       `json:"message"`
		User    userResponse `json:"user"`
	}{
		Message: "You are authenticated",
		User:    userResponse{ID: userID, Email: email, Role: model.Role(role)},
	})
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
