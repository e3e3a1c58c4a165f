package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"suimail/backend/internal/auth"
	"suimail/backend/internal/chain"
	"suimail/backend/internal/service"
)

// MailboxHandler 处理邮箱镜像相关的 HTTP 请求
type MailboxHandler struct {
	mailboxes *service.MailboxService
	log       *zap.Logger
}

// NewMailboxHandler 创建邮箱处理器
func NewMailboxHandler(mailboxes *service.MailboxService, log *zap.Logger) *MailboxHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MailboxHandler{
		mailboxes: mailboxes,
		log:       log,
	}
}

type createMailboxRequest struct {
	MailboxID   string `json:"mailboxId" binding:"required"`
	OwnerWallet string `json:"ownerWallet" binding:"required"`
}

// Create 登记邮箱镜像
// @Summary 登记邮箱
// @Description 把链上已创建的邮箱登记到镜像与注册表，链上交易由前端自行执行
// @Tags 邮箱
// @Accept json
// @Produce json
// @Param request body createMailboxRequest true "邮箱信息"
// @Success 201 {object} Response "登记成功"
// @Failure 400 {object} Response "邮箱已存在"
// @Router /create_mailbox [post]
func (h *MailboxHandler) Create(c *gin.Context) {
	var req createMailboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	mailbox, err := h.mailboxes.Create(c.Request.Context(), req.OwnerWallet, req.MailboxID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidWallet), errors.Is(err, service.ErrMailboxIDRequired):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrMailboxTaken):
			BadRequest(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to register mailbox", zap.Error(err))
			InternalError(c, MsgMailboxCreateFailed)
		}
		return
	}

	Created(c, mailbox)
}

// GetByOwner 获取指定钱包的邮箱
func (h *MailboxHandler) GetByOwner(c *gin.Context) {
	wallet := c.Param("wallet")

	mailbox, err := h.mailboxes.GetByOwner(c.Request.Context(), wallet)
	if err != nil {
		if errors.Is(err, service.ErrMailboxNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to get mailbox", zap.Error(err))
		InternalError(c, MsgMailboxGetFailed)
		return
	}

	Success(c, mailbox)
}

// Delete 删除邮箱及其全部消息
// @Summary 删除邮箱
// @Description 链上删除成功后移除镜像、注册表条目与邮箱内全部消息
// @Tags 邮箱
// @Produce json
// @Security BearerAuth
// @Param mailboxId path string true "邮箱ID"
// @Success 200 {object} Response "删除成功，返回删除的消息数"
// @Failure 403 {object} Response "不是邮箱所有者"
// @Failure 502 {object} Response "链上交易失败"
// @Router /delete_mailbox/{mailboxId} [delete]
func (h *MailboxHandler) Delete(c *gin.Context) {
	wallet := c.GetString("wallet")
	mailboxID := c.Param("mailboxId")

	deleted, err := h.mailboxes.Delete(c.Request.Context(), mailboxID, wallet)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMailboxNotFound):
			NotFound(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrNotMailboxOwner):
			Forbidden(c, GetErrorMessage(err))
		case errors.Is(err, chain.ErrRelayFailed):
			BadGateway(c, MsgRelayFailed)
		default:
			h.log.Error("failed to delete mailbox", zap.Error(err))
			InternalError(c, MsgMailboxDeleteFailed)
		}
		return
	}

	SuccessWithMsg(c, "邮箱已删除", gin.H{"deletedMessages": deleted})
}
