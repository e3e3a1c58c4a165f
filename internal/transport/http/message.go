package httptransport

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"suimail/backend/internal/chain"
	"suimail/backend/internal/service"
)

// MessageHandler 处理消息台账相关的 HTTP 请求
type MessageHandler struct {
	messages  *service.MessageService
	mailboxes *service.MailboxService
	log       *zap.Logger
}

// NewMessageHandler 创建消息处理器
func NewMessageHandler(messages *service.MessageService, mailboxes *service.MailboxService, log *zap.Logger) *MessageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageHandler{
		messages:  messages,
		mailboxes: mailboxes,
		log:       log,
	}
}

type storeMessageRequest struct {
	ID          uint64  `json:"id"`
	Sender      string  `json:"sender" binding:"required"`
	Receiver    string  `json:"receiver" binding:"required"`
	CID         string  `json:"cid"`
	Content     string  `json:"content"`
	Timestamp   int64   `json:"timestamp"`
	NFTObjectID *string `json:"nftObjectId"`
	ClaimPrice  *uint64 `json:"claimPrice"`
	MailboxID   string  `json:"mailboxId" binding:"required"`
}

// Store 写入消息镜像
// @Summary 保存消息
// @Description 链上发送后把消息写入台账，内容静态加密
// @Tags 消息
// @Accept json
// @Produce json
// @Param request body storeMessageRequest true "消息内容"
// @Success 201 {object} Response "保存成功"
// @Failure 400 {object} Response "CID 为空或 NFT 字段不成对"
// @Failure 404 {object} Response "邮箱不存在"
// @Router /store_message [post]
func (h *MessageHandler) Store(c *gin.Context) {
	var req storeMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	view, err := h.messages.Store(c.Request.Context(), service.StoreMessageInput{
		ID:          req.ID,
		Sender:      req.Sender,
		Receiver:    req.Receiver,
		CID:         req.CID,
		Content:     req.Content,
		Timestamp:   req.Timestamp,
		NFTObjectID: req.NFTObjectID,
		ClaimPrice:  req.ClaimPrice,
		MailboxID:   req.MailboxID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCID), errors.Is(err, service.ErrNFTFieldsMismatch):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrMailboxNotFound):
			NotFound(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to store message", zap.Error(err))
			InternalError(c, MsgMessageStoreFailed)
		}
		return
	}

	Created(c, view)
}

// List 获取当前用户参与的全部消息
// @Summary 消息列表
// @Description 返回当前钱包作为发送方或接收方的全部消息（解密后）
// @Tags 消息
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "消息列表"
// @Router /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	wallet := c.GetString("wallet")

	views, err := h.messages.ListForParticipant(c.Request.Context(), wallet)
	if err != nil {
		h.log.Error("failed to list messages", zap.Error(err))
		InternalError(c, MsgMessageListFailed)
		return
	}

	Success(c, views)
}

// Delete 删除一条消息
// @Summary 删除消息
// @Description 链上删除成功后移除镜像记录，仅邮箱所有者可操作
// @Tags 消息
// @Produce json
// @Security BearerAuth
// @Param mailboxId path string true "邮箱ID"
// @Param messageId path integer true "消息ID"
// @Success 204 {object} Response "删除成功"
// @Failure 403 {object} Response "不是邮箱所有者"
// @Failure 502 {object} Response "链上交易失败"
// @Router /delete_message/{mailboxId}/{messageId} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	wallet := c.GetString("wallet")
	mailboxID := c.Param("mailboxId")

	messageID, err := strconv.ParseUint(c.Param("messageId"), 10, 64)
	if err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.messages.Delete(c.Request.Context(), mailboxID, messageID, wallet); err != nil {
		switch {
		case errors.Is(err, service.ErrMailboxNotFound), errors.Is(err, service.ErrMessageNotFound):
			NotFound(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrNotMailboxOwner):
			Forbidden(c, GetErrorMessage(err))
		case errors.Is(err, chain.ErrRelayFailed):
			BadGateway(c, MsgRelayFailed)
		default:
			h.log.Error("failed to delete message", zap.Error(err))
			InternalError(c, MsgMessageDeleteFailed)
		}
		return
	}

	NoContent(c)
}
