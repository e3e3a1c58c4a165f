package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"suimail/backend/internal/auth"
	"suimail/backend/internal/chain"
	"suimail/backend/internal/service"
)

// UserHandler 处理用户档案相关的 HTTP 请求
type UserHandler struct {
	identity *service.IdentityService
	log      *zap.Logger
}

// NewUserHandler 创建档案处理器
func NewUserHandler(identity *service.IdentityService, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{
		identity: identity,
		log:      log,
	}
}

type registerRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	Username      string `json:"username" binding:"required"`
	DisplayName   string `json:"displayName"`
	Bio           string `json:"bio"`
	AvatarCID     string `json:"avatarCid"`
	Password      string `json:"password"`
}

type updateProfileRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	AvatarCID   *string `json:"avatarCid"`
}

// Register 注册用户档案
// @Summary 注册档案
// @Description 链上创建档案与邮箱后写入镜像
// @Tags 档案
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} Response "注册成功"
// @Failure 400 {object} Response "钱包地址已注册"
// @Failure 502 {object} Response "链上交易失败"
// @Router /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.identity.Register(c.Request.Context(), service.RegisterInput{
		WalletAddress: req.WalletAddress,
		Username:      req.Username,
		DisplayName:   req.DisplayName,
		Bio:           req.Bio,
		AvatarCID:     req.AvatarCID,
		Password:      req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidWallet), errors.Is(err, service.ErrUsernameRequired):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrWalletTaken):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, chain.ErrRelayFailed):
			BadGateway(c, MsgRelayFailed)
		default:
			h.log.Error("failed to register profile", zap.Error(err))
			InternalError(c, MsgRegisterFailed)
		}
		return
	}

	Created(c, user)
}

// UpdateProfile 更新当前用户档案
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	wallet := c.GetString("wallet")

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.identity.UpdateProfile(c.Request.Context(), wallet, service.UpdateProfileInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarCID:   req.AvatarCID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameRequired):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrProfileNotFound):
			NotFound(c, GetErrorMessage(err))
		case errors.Is(err, chain.ErrRelayFailed):
			BadGateway(c, MsgRelayFailed)
		default:
			h.log.Error("failed to update profile", zap.Error(err))
			InternalError(c, MsgProfileUpdateFailed)
		}
		return
	}

	Success(c, user)
}

// GetProfile 获取指定钱包的公开档案
func (h *UserHandler) GetProfile(c *gin.Context) {
	wallet := c.Param("wallet")

	user, err := h.identity.GetProfile(c.Request.Context(), wallet)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to get profile", zap.Error(err))
		InternalError(c, MsgProfileGetFailed)
		return
	}

	Success(c, user)
}
