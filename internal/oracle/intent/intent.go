// Package intent 把一句自由文本粗分成 oracle 的意图类型。
// 只用关键字和正则，不做 NLU；够 mock 服务和探针联调用。
package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Type string

const (
	Speak    Type = "SPEAK"
	Transfer Type = "TRANSFER"
	Navigate Type = "NAVIGATE"
	Wallet   Type = "WALLET"
	OpenApp  Type = "OPEN_APP"
	Help     Type = "HELP"
)

// Request POST /api/ai/oracle 的请求体
type Request struct {
	Text    string   `json:"text"`
	Context *Context `json:"context,omitempty"`
}

type Context struct {
	VisionObject  *string `json:"vision_object"`
	WalletBalance *uint64 `json:"wallet_balance"`
	ActiveApp     *string `json:"active_app"`
}

type Data struct {
	Amount    *uint64 `json:"amount"`
	Recipient *string `json:"recipient"`
	Location  *string `json:"location"`
	Duration  *string `json:"duration"`
	AppType   *string `json:"app_type"`
	URL       *string `json:"url"`
	Query     *string `json:"query"`
	Memo      *string `json:"memo"`
}

type Response struct {
	IntentType           Type     `json:"intent_type"`
	Content              string   `json:"content"`
	Data                 *Data    `json:"data"`
	RequiresConfirmation bool     `json:"requires_confirmation"`
	SuggestedActions     []string `json:"suggested_actions"`
	Confidence           float32  `json:"confidence"`
}

var (
	reTransfer = regexp.MustCompile(`(?i)\b(?:send|transfer|pay)\s+(\d+)\s*([a-z]+)?\s+to\s+([\w.@-]+)`)
	reOpen     = regexp.MustCompile(`(?i)\b(?:open|launch|start)\s+(?:the\s+)?([a-z]+)`)
	reNavigate = regexp.MustCompile(`(?i)\b(?:navigate|directions|take me)\s+(?:to\s+)?(.+)$`)
	reBalance  = regexp.MustCompile(`(?i)\b(balance|wallet|how much)\b`)
	reHelp     = regexp.MustCompile(`(?i)^\s*(help|what can you do)\b`)
)

func ptr[T any](v T) *T { return &v }

// Classify 规则按优先级匹配：转账 > 余额 > 打开应用 > 导航 > 帮助 > 其余当闲聊
func Classify(text string, balance uint64) Response {
	t := strings.TrimSpace(text)

	if m := reTransfer.FindStringSubmatch(t); m != nil {
		amount, err := strconv.ParseUint(m[1], 10, 64)
		if err == nil {
			unit := strings.ToUpper(m[2])
			if unit == "" {
				unit = "KARA"
			}
			resp := Response{
				IntentType:           Transfer,
				Content:              fmt.Sprintf("Send %d %s to %s?", amount, unit, m[3]),
				Data:                 &Data{Amount: ptr(amount), Recipient: ptr(m[3])},
				RequiresConfirmation: true,
				SuggestedActions:     []string{"Confirm", "Cancel"},
				Confidence:           0.92,
			}
			if amount > balance {
				resp.Content = fmt.Sprintf("Insufficient balance: you have %d KARA, need %d.", balance, amount)
				resp.RequiresConfirmation = false
				resp.SuggestedActions = []string{"Check balance"}
			}
			return resp
		}
	}

	if reBalance.MatchString(t) {
		return Response{
			IntentType:       Wallet,
			Content:          fmt.Sprintf("Your balance is %d KARA.", balance),
			SuggestedActions: []string{"Send tokens", "View history"},
			Confidence:       0.95,
		}
	}

	if m := reOpen.FindStringSubmatch(t); m != nil {
		app := strings.ToLower(m[1])
		return Response{
			IntentType:       OpenApp,
			Content:          "Opening " + app + ".",
			Data:             &Data{AppType: ptr(app)},
			SuggestedActions: []string{"Close " + app},
			Confidence:       0.85,
		}
	}

	if m := reNavigate.FindStringSubmatch(t); m != nil {
		dest := strings.TrimSpace(m[1])
		return Response{
			IntentType:       Navigate,
			Content:          "Starting navigation to " + dest + ".",
			Data:             &Data{Location: ptr(dest)},
			SuggestedActions: []string{"Stop navigation"},
			Confidence:       0.8,
		}
	}

	if reHelp.MatchString(t) {
		return Response{
			IntentType:       Help,
			Content:          "I can help you with: checking your wallet, sending tokens, opening apps, navigation, and more. Just ask!",
			SuggestedActions: []string{"Check balance", "Open browser"},
			Confidence:       0.9,
		}
	}

	return Response{
		IntentType:       Speak,
		Content:          "I heard: " + t,
		SuggestedActions: []string{"Help"},
		Confidence:       0.5,
	}
}
