package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"oracleprobe.com/internal/oracle/gateway"
	"oracleprobe.com/internal/oracle/intent"
	"oracleprobe.com/pkg/common"
	"oracleprobe.com/pkg/logger"
	"oracleprobe.com/pkg/safe"
)

type Handler struct {
	ctx    context.Context // 进程生命周期，延迟推送挂在它上面
	broker gateway.Broker
	state  *State
}

func NewHandler(ctx context.Context, b gateway.Broker, st *State) *Handler {
	return &Handler{ctx: ctx, broker: b, state: st}
}

// Oracle POST /api/ai/oracle
// 同步返回意图；event_delay 之后再把结果推到 oracle 频道（钱包类意图额外推 WalletUpdate）。
func (h *Handler) Oracle(c *gin.Context) {
	var req intent.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailLogged(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		common.Fail(c, http.StatusBadRequest, "text is required")
		return
	}

	balance := h.state.Balance()
	if req.Context != nil && req.Context.WalletBalance != nil {
		balance = *req.Context.WalletBalance
	}
	resp := intent.Classify(req.Text, balance)
	rid := common.RequestID(c)

	logger.Info(c.Request.Context(), "oracle processed",
		zap.String("intent", string(resp.IntentType)),
		zap.Float32("confidence", resp.Confidence),
	)

	h.schedule(rid, resp, balance)
	common.Success(c, resp)
}

func (h *Handler) schedule(rid string, resp intent.Response, balance uint64) {
	events := []gateway.Message{{
		Topic:   gateway.TopicOracle,
		Payload: mustJSON(OracleEvent{Type: EventOracleResponse, RequestID: rid, Intent: resp}),
	}}
	if resp.IntentType == intent.Wallet {
		w := mustJSON(WalletEvent{Type: EventWalletUpdate, Balance: balance})
		events = append(events,
			gateway.Message{Topic: gateway.TopicOracle, Payload: w},
			gateway.Message{Topic: gateway.TopicWallet, Payload: w},
		)
	}

	delay := h.state.EventDelay()
	ctx := logger.WithRequestID(h.ctx, rid)
	safe.GoCtx(ctx, func(ctx context.Context) {
		if delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
		for _, ev := range events {
			if err := h.broker.Publish(ctx, ev.Topic, ev.Payload); err != nil {
				logger.Warn(ctx, "publish event failed", zap.String("topic", ev.Topic), zap.Error(err))
				return
			}
		}
	})
}

func (h *Handler) Health(c *gin.Context) {
	common.Success(c, gin.H{"status": "ok", "balance": h.state.Balance()})
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
