package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrRelayFailed 链上中继调用失败
//
// 中继失败不重试：镜像写入只在链上调用成功后进行，
// 调用方收到失败后整个操作原样失败。
var ErrRelayFailed = errors.New("chain relay failed")

// MoveCall 一次 Move 合约调用
type MoveCall struct {
	Module    string        `json:"module"`
	Function  string        `json:"function"`
	Arguments []interface{} `json:"arguments"`
}

// Receipt 链上执行回执
type Receipt struct {
	Digest    string `json:"digest"`
	Succeeded bool   `json:"succeeded"`
}

// Relay 把 Move 调用提交到链上
//
// 同一次 Submit 中的多个调用进入同一个交易块，整体成功或整体失败。
type Relay interface {
	Submit(ctx context.Context, calls ...MoveCall) (*Receipt, error)
}

// rpcRequest JSON-RPC 2.0 请求
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse JSON-RPC 2.0 响应
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCRelay 通过签名中继节点的 JSON-RPC 接口提交交易
type RPCRelay struct {
	endpoint  string
	packageID string
	client    *http.Client
	log       *zap.Logger
	seq       atomic.Uint64
}

// NewRPCRelay 创建 JSON-RPC 中继客户端
func NewRPCRelay(endpoint, packageID string, timeout time.Duration, log *zap.Logger) *RPCRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &RPCRelay{
		endpoint:  endpoint,
		packageID: packageID,
		client:    &http.Client{Timeout: timeout},
		log:       log,
	}
}

// Submit 提交 Move 调用并等待执行回执
func (r *RPCRelay) Submit(ctx context.Context, calls ...MoveCall) (*Receipt, error) {
	if len(calls) == 0 {
		return nil, fmt.Errorf("%w: empty transaction block", ErrRelayFailed)
	}

	payload := rpcRequest{
		JSONRPC: "2.0",
		ID:      r.seq.Add(1),
		Method:  "suimail_executeTransactionBlock",
		Params:  []interface{}{r.packageID, calls},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Error("chain relay request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		r.log.Error("chain relay returned non-200",
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: http status %d", ErrRelayFailed, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	if rpcResp.Error != nil {
		r.log.Error("chain relay rpc error",
			zap.Int("code", rpcResp.Error.Code),
			zap.String("message", rpcResp.Error.Message),
		)
		return nil, fmt.Errorf("%w: %s", ErrRelayFailed, rpcResp.Error.Message)
	}

	var receipt Receipt
	if err := json.Unmarshal(rpcResp.Result, &receipt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	if !receipt.Succeeded {
		return nil, fmt.Errorf("%w: transaction aborted on chain, digest %s", ErrRelayFailed, receipt.Digest)
	}

	r.log.Info("chain transaction executed",
		zap.String("digest", receipt.Digest),
		zap.String("module", calls[0].Module),
		zap.String("function", calls[0].Function),
	)

	return &receipt, nil
}

// NopRelay 空中继，所有调用立即成功
//
// 链上中继未配置时使用，镜像成为唯一事实来源。
type NopRelay struct{}

// Submit 直接返回成功回执
func (NopRelay) Submit(_ context.Context, _ ...MoveCall) (*Receipt, error) {
	return &Receipt{Digest: "", Succeeded: true}, nil
}
