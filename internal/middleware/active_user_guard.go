package middleware

import (
	"errors"
	"net/http"

	"cakeshop/internal/repository"

	"github.com/labstack/echo/v4"
)

// トークンのユーザーがまだDBに存在するか確認する。
// role はDBの値で上書きする（権限を外された管理者のトークンを通さない）。
func ActiveUserGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			rawUserID := c.Get(CtxUserIDKey)
			userID, ok := rawUserID.(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON(http.StatusUnauthorized, "unauthorized"))
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, errorJSON(http.StatusUnauthorized, "unauthorized"))
			}
			if err != nil {
				c.Logger().Errorf("active user guard: %v", err)
				return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
			}

			c.Set(CtxUserEmailKey, user.Email)
			c.Set(CtxUserRoleKey, string(user.Role))

			return next(c)
		}
	}
}
