package httptransport

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"suimail/backend/internal/auth"
	jwtpkg "suimail/backend/internal/auth/jwt"
	"suimail/backend/internal/storage/redis"
)

// AuthHandler 处理认证相关的 HTTP 请求
type AuthHandler struct {
	authService *auth.Service
	jwtManager  *jwtpkg.Manager
	cache       *redis.Cache // 可选的令牌黑名单
	log         *zap.Logger
}

// NewAuthHandler 创建新的认证处理器实例
func NewAuthHandler(authService *auth.Service, jwtManager *jwtpkg.Manager, cache *redis.Cache, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		jwtManager:  jwtManager,
		cache:       cache,
		log:         log,
	}
}

type tokenRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	Password      string `json:"password"`
}

// Token 签发访问令牌
// @Summary 获取访问令牌
// @Description 验证钱包凭证，签发 60 分钟有效的 JWT
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body tokenRequest true "钱包凭证"
// @Success 200 {object} Response "签发成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "凭证无效"
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	token, err := h.authService.IssueToken(req.WalletAddress, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidWallet):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, auth.ErrUserNotFound):
			NotFound(c, GetErrorMessage(err))
		case errors.Is(err, auth.ErrInvalidCredentials):
			Unauthorized(c, MsgInvalidCredentials)
		default:
			h.log.Error("failed to issue token", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	Success(c, token)
}

// Logout 注销当前令牌
//
// 把令牌的 jti 加入黑名单直到自然过期。未配置 Redis 时为空操作。
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID := c.GetString("tokenID")
	if h.cache != nil && tokenID != "" {
		if err := h.cache.AddToBlacklist(c.Request.Context(), tokenID, time.Hour); err != nil {
			h.log.Warn("failed to blacklist token", zap.Error(err))
		}
	}
	NoContent(c)
}

// Me 返回当前令牌对应的用户
func (h *AuthHandler) Me(c *gin.Context) {
	wallet := c.GetString("wallet")

	user, err := h.authService.GetUser(wallet)
	if err != nil {
		NotFound(c, GetErrorMessage(auth.ErrUserNotFound))
		return
	}

	Success(c, user)
}
