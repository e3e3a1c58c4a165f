package chain

import "context"

// Move 合约模块名
const (
	moduleProfile   = "profile"
	moduleMessaging = "messaging_with_nft"
	moduleKiosk     = "kiosk"
)

// Sui 共享时钟对象
const clockObjectID = "0x6"

// Caller 封装各 Move 合约入口的调用
type Caller struct {
	relay Relay
}

// NewCaller 创建合约调用封装
func NewCaller(relay Relay) *Caller {
	return &Caller{relay: relay}
}

// RegisterProfile 注册档案并初始化邮箱
//
// 两个调用进入同一个交易块：档案与邮箱要么一起创建要么都不创建。
func (c *Caller) RegisterProfile(ctx context.Context, wallet, username, displayName, bio, avatarCID string) (*Receipt, error) {
	return c.relay.Submit(ctx,
		MoveCall{
			Module:    moduleProfile,
			Function:  "register_profile",
			Arguments: []interface{}{wallet, username, displayName, bio, avatarCID},
		},
		MoveCall{
			Module:    moduleMessaging,
			Function:  "init_mailbox",
			Arguments: []interface{}{},
		},
	)
}

// UpdateProfile 更新档案
func (c *Caller) UpdateProfile(ctx context.Context, profileID, displayName, bio, avatarCID string) (*Receipt, error) {
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleProfile,
		Function:  "update_profile",
		Arguments: []interface{}{profileID, displayName, bio, avatarCID},
	})
}

// SendMessage 发送消息
func (c *Caller) SendMessage(ctx context.Context, senderMailbox, receiverMailbox, bankID, paymentObject string, cid string) (*Receipt, error) {
	encoded := []byte(cid)
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleMessaging,
		Function:  "send_message",
		Arguments: []interface{}{senderMailbox, receiverMailbox, bankID, paymentObject, encoded, clockObjectID},
	})
}

// DeleteMessage 删除邮箱中的消息引用
func (c *Caller) DeleteMessage(ctx context.Context, mailboxID string, messageID uint64) (*Receipt, error) {
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleMessaging,
		Function:  "delete_message",
		Arguments: []interface{}{mailboxID, messageID},
	})
}

// DeleteMailbox 删除整个邮箱
func (c *Caller) DeleteMailbox(ctx context.Context, mailboxID string) (*Receipt, error) {
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleMessaging,
		Function:  "delete_mailbox",
		Arguments: []interface{}{mailboxID},
	})
}

// InitKiosk 初始化售货亭
func (c *Caller) InitKiosk(ctx context.Context) (*Receipt, error) {
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleKiosk,
		Function:  "init_kiosk",
		Arguments: []interface{}{},
	})
}

// LinkKiosk 将售货亭关联到档案
func (c *Caller) LinkKiosk(ctx context.Context, profileID, kioskID string) (*Receipt, error) {
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleProfile,
		Function:  "link_kiosk",
		Arguments: []interface{}{profileID, kioskID},
	})
}

// PublishItem 上架商品
func (c *Caller) PublishItem(ctx context.Context, kioskID, title, contentCID string, price uint64) (*Receipt, error) {
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleKiosk,
		Function:  "publish_item",
		Arguments: []interface{}{kioskID, title, contentCID, price},
	})
}

// DeleteItem 下架商品
func (c *Caller) DeleteItem(ctx context.Context, kioskID, itemID string) (*Receipt, error) {
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleKiosk,
		Function:  "delete_item",
		Arguments: []interface{}{kioskID, itemID},
	})
}

// BuyItem 购买商品
func (c *Caller) BuyItem(ctx context.Context, kioskID, itemID, paymentObject string) (*Receipt, error) {
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleKiosk,
		Function:  "buy_item",
		Arguments: []interface{}{kioskID, itemID, paymentObject},
	})
}

// WithdrawFunds 提取售货亭资金
func (c *Caller) WithdrawFunds(ctx context.Context, kioskID string) (*Receipt, error) {
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleKiosk,
		Function:  "withdraw_funds",
		Arguments: []interface{}{kioskID},
	})
}

// DeleteKiosk 删除售货亭（管理员）
func (c *Caller) DeleteKiosk(ctx context.Context, adminCap, kioskID string) (*Receipt, error) {
	return c.relay.Submit(ctx, MoveCall{
		Module:    moduleKiosk,
		Function:  "delete_kiosk",
		Arguments: []interface{}{adminCap, kioskID},
	})
}
