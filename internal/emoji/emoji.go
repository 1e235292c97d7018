package emoji

import "sync/atomic"

// symbols maps a key to [emoji, plain fallback]
var symbols = map[string][2]string{
	"heart":     {"💗", "<3"},
	"atom":      {"⚛️", "(*)"},
	"upload":    {"📤", "[UP]"},
	"sparkles":  {"✨", "*"},
	"waves":     {"🌊", "~"},
	"zap":       {"⚡", "[RUN]"},
	"user":      {"👤", "[P]"},
	"chart":     {"📈", "[PLOT]"},
	"report":    {"📜", "[RPT]"},
	"params":    {"🎛️", "[PAR]"},
	"image":     {"🖼️", "[IMG]"},
	"coherent":  {"🔵", "[COH]"},
	"decohered": {"🩷", "[DEC]"},
	"error":     {"❌", "[ERR]"},
	"warning":   {"⚠️", "[WRN]"},
	"info":      {"ℹ️", "[INF]"},
	"success":   {"✅", "[OK]"},
	"help":      {"❓", "[?]"},
	"target":    {"🎯", "[>]"},
	"door":      {"🚪", "[EXIT]"},
	"folder":    {"📁", "[DIR]"},
	"server":    {"🛰️", "[SRV]"},
}

var disabled atomic.Bool

// SetEmojiDisabled switches every lookup to the plain fallbacks
func SetEmojiDisabled(v bool) {
	disabled.Store(v)
}

func IsEmojiDisabled() bool {
	return disabled.Load()
}

// GetEmoji returns the emoji for key, or its fallback when emoji are disabled
func GetEmoji(key string) string {
	mapping, ok := symbols[key]
	if !ok {
		return "[?]"
	}
	if disabled.Load() {
		return mapping[1]
	}
	return mapping[0]
}
