package websocket

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"suimail/backend/internal/domain"
	"suimail/backend/internal/storage/redis"
)

// broker 是扩散通知所需的 Redis 发布订阅能力
type broker interface {
	PublishNewMessage(ctx context.Context, receiverWallet string, message *domain.MessageView) error
	SubscribeNewMessages(ctx context.Context) *goredis.PubSub
}

// sink 本地连接分发端
type sink interface {
	NotifyNewMessage(receiverWallet string, view *domain.MessageView)
}

// Fanout 通过 Redis 发布订阅在多实例间扩散新消息通知。
//
// 写入实例把通知发布到接收方的频道，每个实例订阅全部频道
// 并推送给本地在线连接。发布失败时降级为仅本地推送。
type Fanout struct {
	broker broker
	local  sink
	log    *zap.Logger
}

// NewFanout 创建跨实例通知扩散器
func NewFanout(cache *redis.Cache, local sink, log *zap.Logger) *Fanout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{
		broker: cache,
		local:  local,
		log:    log,
	}
}

// NotifyNewMessage 把通知发布到 Redis。
//
// 本实例不直接推送：订阅循环收到发布后统一转发，
// 避免本地连接收到重复通知。
func (f *Fanout) NotifyNewMessage(receiverWallet string, view *domain.MessageView) {
	if err := f.broker.PublishNewMessage(context.Background(), receiverWallet, view); err != nil {
		f.log.Warn("failed to publish new message notification", zap.Error(err))
		f.local.NotifyNewMessage(receiverWallet, view)
	}
}

// Run 订阅通知频道并转发给本地连接，阻塞直到 ctx 取消。
func (f *Fanout) Run(ctx context.Context) error {
	pubsub := f.broker.SubscribeNewMessages(ctx)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var view domain.MessageView
			if err := json.Unmarshal([]byte(msg.Payload), &view); err != nil {
				f.log.Warn("failed to decode new message notification", zap.Error(err))
				continue
			}
			f.local.NotifyNewMessage(redis.WalletFromChannel(msg.Channel), &view)
		}
	}
}
