package probe

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/segmentio/encoding/json"
)

// Printer 控制台输出。listener 和主流程都会写，所以加锁串行化。
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// JSON 原样缩进打印（不解码成 map，key 顺序和数值精度都保持服务端给的样子）
func (p *Printer) JSON(label string, raw []byte) error {
	pretty, err := indentJSON(raw)
	if err != nil {
		return err
	}
	p.Printf("%s: %s\n", label, pretty)
	return nil
}

func indentJSON(raw []byte) (string, error) {
	if !json.Valid(raw) {
		return "", fmt.Errorf("invalid json: %q", truncate(raw, 64))
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
