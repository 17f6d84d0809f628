package api

import "oracleprobe.com/internal/oracle/intent"

// 推送到 ws 频道的事件，type 字段区分
const (
	EventOracleResponse = "OracleResponse"
	EventWalletUpdate   = "WalletUpdate"
)

type OracleEvent struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Intent    intent.Response `json:"intent"`
}

type WalletEvent struct {
	Type       string  `json:"type"`
	Balance    uint64  `json:"balance"`
	LastTxHash *string `json:"last_tx_hash"`
}
