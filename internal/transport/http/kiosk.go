package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"suimail/backend/internal/auth"
	"suimail/backend/internal/chain"
	"suimail/backend/internal/service"
)

// KioskHandler 处理售货亭与资金池相关的 HTTP 请求
type KioskHandler struct {
	kiosks *service.KioskService
	log    *zap.Logger
}

// NewKioskHandler 创建售货亭处理器
func NewKioskHandler(kiosks *service.KioskService, log *zap.Logger) *KioskHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &KioskHandler{
		kiosks: kiosks,
		log:    log,
	}
}

type createKioskRequest struct {
	KioskID string `json:"kioskId" binding:"required"`
}

type addKioskItemRequest struct {
	ItemID     string `json:"itemId" binding:"required"`
	KioskID    string `json:"kioskId" binding:"required"`
	Title      string `json:"title"`
	ContentCID string `json:"contentCid"`
	Price      uint64 `json:"price"`
}

type buyItemRequest struct {
	PaymentObject string `json:"paymentObject" binding:"required"`
	BankID        string `json:"bankId" binding:"required"`
}

// Create 创建售货亭
// @Summary 创建售货亭
// @Description 链上创建售货亭并关联到档案后写入镜像
// @Tags 售货亭
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createKioskRequest true "售货亭信息"
// @Success 201 {object} Response "创建成功"
// @Failure 400 {object} Response "售货亭已存在"
// @Failure 502 {object} Response "链上交易失败"
// @Router /create_kiosk [post]
func (h *KioskHandler) Create(c *gin.Context) {
	wallet := c.GetString("wallet")

	var req createKioskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	kiosk, err := h.kiosks.Create(c.Request.Context(), wallet, req.KioskID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidWallet), errors.Is(err, service.ErrKioskIDRequired):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrKioskTaken):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, chain.ErrRelayFailed):
			BadGateway(c, MsgRelayFailed)
		default:
			h.log.Error("failed to create kiosk", zap.Error(err))
			InternalError(c, MsgKioskCreateFailed)
		}
		return
	}

	Created(c, kiosk)
}

// List 返回全部售货亭
func (h *KioskHandler) List(c *gin.Context) {
	kiosks, err := h.kiosks.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list kiosks", zap.Error(err))
		InternalError(c, MsgKioskGetFailed)
		return
	}

	Success(c, kiosks)
}

// Get 获取指定售货亭
func (h *KioskHandler) Get(c *gin.Context) {
	kioskID := c.Param("kioskId")

	kiosk, err := h.kiosks.Get(c.Request.Context(), kioskID)
	if err != nil {
		if errors.Is(err, service.ErrKioskNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to get kiosk", zap.Error(err))
		InternalError(c, MsgKioskGetFailed)
		return
	}

	Success(c, kiosk)
}

// Delete 删除售货亭及其全部商品
// @Summary 删除售货亭
// @Description 删除售货亭镜像与其全部商品，仅所有者可操作
// @Tags 售货亭
// @Produce json
// @Security BearerAuth
// @Param kioskId path string true "售货亭ID"
// @Success 204 {object} Response "删除成功"
// @Failure 403 {object} Response "不是售货亭所有者"
// @Router /delete_kiosk/{kioskId} [delete]
func (h *KioskHandler) Delete(c *gin.Context) {
	wallet := c.GetString("wallet")
	kioskID := c.Param("kioskId")

	if err := h.kiosks.Delete(c.Request.Context(), wallet, kioskID); err != nil {
		switch {
		case errors.Is(err, service.ErrKioskNotFound):
			NotFound(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrNotKioskOwner):
			Forbidden(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to delete kiosk", zap.Error(err))
			InternalError(c, MsgKioskDeleteFailed)
		}
		return
	}

	NoContent(c)
}

// ListItems 返回售货亭内全部商品
func (h *KioskHandler) ListItems(c *gin.Context) {
	kioskID := c.Param("kioskId")

	items, err := h.kiosks.ListItems(c.Request.Context(), kioskID)
	if err != nil {
		if errors.Is(err, service.ErrKioskNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to list kiosk items", zap.Error(err))
		InternalError(c, MsgKioskGetFailed)
		return
	}

	Success(c, items)
}

// AddItem 上架商品
// @Summary 上架商品
// @Description 链上上架成功后写入商品镜像，仅售货亭所有者可操作
// @Tags 售货亭
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body addKioskItemRequest true "商品信息"
// @Success 201 {object} Response "上架成功"
// @Failure 403 {object} Response "不是售货亭所有者"
// @Failure 502 {object} Response "链上交易失败"
// @Router /add_kiosk_item [post]
func (h *KioskHandler) AddItem(c *gin.Context) {
	wallet := c.GetString("wallet")

	var req addKioskItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	item, err := h.kiosks.PublishItem(c.Request.Context(), wallet, service.PublishItemInput{
		ItemID:     req.ItemID,
		KioskID:    req.KioskID,
		Title:      req.Title,
		ContentCID: req.ContentCID,
		Price:      req.Price,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCID), errors.Is(err, service.ErrInvalidPrice):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrKioskNotFound):
			NotFound(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrNotKioskOwner):
			Forbidden(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrItemTaken):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, chain.ErrRelayFailed):
			BadGateway(c, MsgRelayFailed)
		default:
			h.log.Error("failed to publish item", zap.Error(err))
			InternalError(c, MsgItemPublishFailed)
		}
		return
	}

	Created(c, item)
}

// DeleteItem 下架商品
func (h *KioskHandler) DeleteItem(c *gin.Context) {
	wallet := c.GetString("wallet")
	itemID := c.Param("itemId")

	if err := h.kiosks.DeleteItem(c.Request.Context(), wallet, itemID); err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			NotFound(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrNotKioskOwner):
			Forbidden(c, GetErrorMessage(err))
		case errors.Is(err, chain.ErrRelayFailed):
			BadGateway(c, MsgRelayFailed)
		default:
			h.log.Error("failed to delete item", zap.Error(err))
			InternalError(c, MsgItemDeleteFailed)
		}
		return
	}

	NoContent(c)
}

// BuyItem 购买商品
// @Summary 购买商品
// @Description 链上购买成功后商品下架并累加资金池镜像余额
// @Tags 售货亭
// @Accept json
// @Produce json
// @Param itemId path string true "商品ID"
// @Param request body buyItemRequest true "支付信息"
// @Success 200 {object} Response "购买成功"
// @Failure 404 {object} Response "商品不存在"
// @Failure 502 {object} Response "链上交易失败"
// @Router /buy_kiosk_item/{itemId} [post]
func (h *KioskHandler) BuyItem(c *gin.Context) {
	itemID := c.Param("itemId")

	var req buyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	item, err := h.kiosks.BuyItem(c.Request.Context(), itemID, req.PaymentObject, req.BankID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			NotFound(c, GetErrorMessage(err))
		case errors.Is(err, chain.ErrRelayFailed):
			BadGateway(c, MsgRelayFailed)
		default:
			h.log.Error("failed to buy item", zap.Error(err))
			InternalError(c, MsgItemBuyFailed)
		}
		return
	}

	SuccessWithMsg(c, "购买成功", item)
}

// Withdraw 提取资金池余额
// @Summary 提取资金
// @Description 链上提取成功后清零镜像余额，仅管理员可操作
// @Tags 售货亭
// @Produce json
// @Security BearerAuth
// @Param bankId path string true "资金池ID"
// @Success 200 {object} Response "提取成功，返回提取金额"
// @Failure 403 {object} Response "不是资金池管理员"
// @Failure 502 {object} Response "链上交易失败"
// @Router /withdraw_funds/{bankId} [post]
func (h *KioskHandler) Withdraw(c *gin.Context) {
	wallet := c.GetString("wallet")
	bankID := c.Param("bankId")

	amount, err := h.kiosks.Withdraw(c.Request.Context(), wallet, bankID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBankNotFound):
			NotFound(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrNotBankAdmin):
			Forbidden(c, GetErrorMessage(err))
		case errors.Is(err, chain.ErrRelayFailed):
			BadGateway(c, MsgRelayFailed)
		default:
			h.log.Error("failed to withdraw funds", zap.Error(err))
			InternalError(c, MsgWithdrawFailed)
		}
		return
	}

	SuccessWithMsg(c, "提取成功", gin.H{"amount": amount})
}
