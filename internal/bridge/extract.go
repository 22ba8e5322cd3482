package bridge

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy は JSON を取り出した抽出戦略の名前。
type Strategy string

const (
	StrategySentinel  Strategy = "sentinel"
	StrategyFenced    Strategy = "fenced"
	StrategyBraceSpan Strategy = "brace_span"
	StrategyWholeText Strategy = "whole_text"
)

const (
	SentinelBegin = "###JSON_BEGIN###"
	SentinelEnd   = "###JSON_END###"
)

var (
	sentinelRe = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(SentinelBegin) + `\s*(.*?)\s*` + regexp.QuoteMeta(SentinelEnd))
	fencedRe   = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
)

type extractor struct {
	name Strategy
	find func(text string) (string, bool)
}

// 優先順。明示的なマーカーから順に、最後は全文をそのまま試す。
var extractors = []extractor{
	{StrategySentinel, func(text string) (string, bool) {
		return firstSubmatch(sentinelRe, text)
	}},
	{StrategyFenced, func(text string) (string, bool) {
		return firstSubmatch(fencedRe, text)
	}},
	{StrategyBraceSpan, func(text string) (string, bool) {
		// 先頭の { から末尾の } まで。複数オブジェクトがあると誤抽出しうる。
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return "", false
		}
		return text[start : end+1], true
	}},
	{StrategyWholeText, func(text string) (string, bool) {
		return text, text != ""
	}},
}

func firstSubmatch(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// ExtractJSON は雑多なテキスト出力から JSON ペイロードを 1 つ取り出す。
// マッチしてもパースできない戦略は飛ばして次を試す。
// 返す値は空白を詰めた JSON で、キー順と数値表記は元のまま。
func ExtractJSON(text string) (json.RawMessage, Strategy, error) {
	trimmed := strings.TrimSpace(text)
	for _, ex := range extractors {
		candidate, ok := ex.find(trimmed)
		if !ok {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(strings.TrimSpace(candidate))); err != nil {
			continue
		}
		return json.RawMessage(buf.Bytes()), ex.name, nil
	}
	return nil, "", &JSONExtractionError{Excerpt: Excerpt(trimmed, ExcerptRunes)}
}
