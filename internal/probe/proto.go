package probe

// SubscribeMsg 客户端 -> 服务端：{"type":"subscribe","channel":"oracle"}
type SubscribeMsg struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// IntentRequest POST /api/ai/oracle 的 body
type IntentRequest struct {
	Text string `json:"text"`
}

func subscribe(channel string) SubscribeMsg {
	return SubscribeMsg{Type: "subscribe", Channel: channel}
}
