package httptransport

import (
	"suimail/backend/internal/auth"
	"suimail/backend/internal/service"
)

// 错误消息映射表（业务错误 -> 中文消息）
var errorMessages = map[error]string{
	// 认证/档案错误
	auth.ErrInvalidWallet:       "钱包地址格式无效",
	auth.ErrInvalidCredentials:  "凭证无效",
	auth.ErrUserNotFound:        "用户不存在",
	service.ErrWalletTaken:      "该钱包地址已注册",
	service.ErrProfileNotFound:  "档案不存在",
	service.ErrUsernameRequired: "用户名不能为空",

	// 邮箱错误
	service.ErrMailboxIDRequired: "邮箱ID不能为空",
	service.ErrMailboxTaken:      "邮箱已存在",
	service.ErrMailboxNotFound:   "邮箱不存在",
	service.ErrNotMailboxOwner:   "您不是该邮箱的所有者",

	// 消息错误
	service.ErrEmptyCID:          "消息CID不能为空",
	service.ErrNFTFieldsMismatch: "NFT对象与认领价格必须同时提供",
	service.ErrMessageNotFound:   "消息不存在",

	// 售货亭错误
	service.ErrKioskIDRequired: "售货亭ID不能为空",
	service.ErrKioskTaken:      "售货亭已存在",
	service.ErrKioskNotFound:   "售货亭不存在",
	service.ErrNotKioskOwner:   "您不是该售货亭的所有者",
	service.ErrItemTaken:       "商品ID已占用",
	service.ErrItemNotFound:    "商品不存在",
	service.ErrInvalidPrice:    "价格必须为正数",
	service.ErrBankNotFound:    "资金池不存在",
	service.ErrNotBankAdmin:    "您不是该资金池的管理员",
}

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	if msg, ok := errorMessages[err]; ok {
		return msg
	}
	return err.Error()
}

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest = "请求参数格式错误"

	// 认证相关
	MsgAuthRequired       = "需要登录认证"
	MsgInvalidCredentials = "钱包地址或密码错误"
	MsgTokenInvalid       = "无效的访问令牌"

	// 链上中继相关
	MsgRelayFailed = "链上交易失败，请稍后重试"

	// 档案相关
	MsgRegisterFailed      = "注册失败"
	MsgProfileGetFailed    = "获取档案失败"
	MsgProfileUpdateFailed = "更新档案失败"

	// 邮箱相关
	MsgMailboxCreateFailed = "登记邮箱失败"
	MsgMailboxGetFailed    = "获取邮箱失败"
	MsgMailboxDeleteFailed = "删除邮箱失败"

	// 消息相关
	MsgMessageStoreFailed  = "保存消息失败"
	MsgMessageListFailed   = "获取消息列表失败"
	MsgMessageDeleteFailed = "删除消息失败"

	// 售货亭相关
	MsgKioskCreateFailed = "创建售货亭失败"
	MsgKioskGetFailed    = "获取售货亭失败"
	MsgKioskDeleteFailed = "删除售货亭失败"
	MsgItemPublishFailed = "上架商品失败"
	MsgItemDeleteFailed  = "下架商品失败"
	MsgItemBuyFailed     = "购买商品失败"
	MsgWithdrawFailed    = "提取资金失败"

	// 服务器错误
	MsgInternalError = "服务器内部错误，请稍后重试"
)
