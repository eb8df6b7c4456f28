// internal/auth/context.go
package auth

import (
	"context"

	apperrors "github.com/Corphon/StoryPlannerMCP/internal/errors"
)

// userIDContextKey 请求级用户身份的 context key
type userIDContextKey struct{}

// WithUserID 将用户标识写入请求 context
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext 从请求 context 中解析当前用户标识
// 所有业务操作的第一道门：没有可解析的身份直接失败，不允许继续
func UserIDFromContext(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", apperrors.NewUnauthorizedError("未登录或凭证无效", nil)
	}
	userID, _ := ctx.Value(userIDContextKey{}).(string)
	if userID == "" {
		return "", apperrors.NewUnauthorizedError("未登录或凭证无效", nil)
	}
	return userID, nil
}
