package http

import (
	"errors"
	"strings"

	"warikan/internal/core"
	"warikan/internal/sheets"
)

const (
	// msgFetchFailed is shown for any ledger fetch failure.
	msgFetchFailed   = "データの取得に失敗しました。URLや公開設定を確認してください。"
	msgNoSource      = "データソースのURLが設定されていません。"
	msgInvalidURL    = "URLの形式が正しくありません（http:// または https:// で始まるURLを入力してください）。"
	msgInvalidPeriod = "年月の指定が正しくありません。"
	msgSaveFailed    = "保存に失敗しました。"
	msgAdvanceSaved  = "立替額を保存しました。"
	msgRefreshed     = "最新のデータを取得しました。"
)

// fetchErrorMessage maps a ledger error to the text shown to the user.
func fetchErrorMessage(err error) string {
	if errors.Is(err, sheets.ErrNoSource) {
		return msgNoSource
	}
	return msgFetchFailed
}

// formatYen formats an amount as "¥1,234".
func formatYen(v int64) string {
	return core.FormatYen(v)
}

// barWidth scales v against max as a whole percentage; non-zero values stay
// visible.
func barWidth(v, max int64) int {
	if max <= 0 || v <= 0 {
		return 0
	}
	width := int((v*100 + max/2) / max)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

// sanitizeInput removes control characters except tab and newlines, and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// isHTMX reports whether the request came from htmx.
func isHTMX(h interface{ Get(string) string }) bool {
	return h.Get("HX-Request") == "true"
}
