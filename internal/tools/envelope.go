package tools

import "strings"

// Content は応答の 1 ブロック。現状 type は常に "text"。
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope は成功・失敗に共通の応答形式。
type Envelope struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`

	// 以下はプロセス内の利用者向けで、ワイヤには載せない。
	Kind         FailureKind `json:"-"`
	InvocationID string      `json:"-"`
}

// TextEnvelope は 1 つのテキストブロックだけを持つ Envelope を返す。
func TextEnvelope(text string, isError bool) *Envelope {
	return &Envelope{
		Content: []Content{{Type: "text", Text: text}},
		IsError: isError,
	}
}

// Text は全テキストブロックを改行で連結して返す。
func (e *Envelope) Text() string {
	parts := make([]string, 0, len(e.Content))
	for _, c := range e.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}
