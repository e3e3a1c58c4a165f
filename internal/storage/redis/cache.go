package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"suimail/backend/internal/domain"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// Cache 链下镜像的读缓存与 JWT 黑名单。
//
// 缓存只加速读路径，数据库始终是权威来源。
// 写路径在落库之后主动失效对应键。
type Cache struct {
	client *goredis.Client
}

// NewCache 基于已连接的客户端创建缓存实例
func NewCache(client *Client) *Cache {
	return &Cache{client: client.Client()}
}

// ========== 用户档案缓存 ==========

// CacheProfile 缓存用户档案
func (c *Cache) CacheProfile(ctx context.Context, user *domain.User, ttl time.Duration) error {
	key := fmt.Sprintf("profile:%s", user.WalletAddress)
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetCachedProfile 获取缓存的用户档案
func (c *Cache) GetCachedProfile(ctx context.Context, walletAddress string) (*domain.User, error) {
	key := fmt.Sprintf("profile:%s", walletAddress)
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// InvalidateProfile 失效用户档案缓存
func (c *Cache) InvalidateProfile(ctx context.Context, walletAddress string) error {
	return c.client.Del(ctx, fmt.Sprintf("profile:%s", walletAddress)).Err()
}

// ========== 邮箱注册表缓存 ==========

// CacheRegistryEntry 缓存钱包到邮箱的注册表映射
func (c *Cache) CacheRegistryEntry(ctx context.Context, ownerWallet, mailboxID string, ttl time.Duration) error {
	key := fmt.Sprintf("registry:%s", ownerWallet)
	return c.client.Set(ctx, key, mailboxID, ttl).Err()
}

// GetCachedRegistryEntry 获取缓存的注册表映射
func (c *Cache) GetCachedRegistryEntry(ctx context.Context, ownerWallet string) (string, error) {
	key := fmt.Sprintf("registry:%s", ownerWallet)
	mailboxID, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return mailboxID, nil
}

// InvalidateRegistryEntry 失效注册表映射缓存
func (c *Cache) InvalidateRegistryEntry(ctx context.Context, ownerWallet string) error {
	return c.client.Del(ctx, fmt.Sprintf("registry:%s", ownerWallet)).Err()
}

// ========== JWT 黑名单 ==========

// AddToBlacklist 将 JWT 添加到黑名单
func (c *Cache) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", jti)
	return c.client.Set(ctx, key, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT 是否在黑名单中
func (c *Cache) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", jti)
	_, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ========== 发布订阅 ==========

// 新消息通知的频道前缀，频道名为前缀拼接接收方钱包地址
const newMessageChannelPrefix = "new_message:"

// WalletFromChannel 从通知频道名中还原接收方钱包地址
func WalletFromChannel(channel string) string {
	return strings.TrimPrefix(channel, newMessageChannelPrefix)
}

// PublishNewMessage 发布新消息通知
func (c *Cache) PublishNewMessage(ctx context.Context, receiverWallet string, message *domain.MessageView) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, newMessageChannelPrefix+receiverWallet, data).Err()
}

// SubscribeNewMessages 订阅全部钱包的新消息通知
func (c *Cache) SubscribeNewMessages(ctx context.Context) *goredis.PubSub {
	return c.client.PSubscribe(ctx, newMessageChannelPrefix+"*")
}
