package commands

import (
	"os"
	"runtime"
)

// EmojiEnabled can be turned off with --no-color
var EmojiEnabled = true

var emojiSupport = detectEmojiSupport()

// detectEmojiSupport reports false for the legacy windows console.
// Windows Terminal sets WT_SESSION, conhost sessions only SESSIONNAME
func detectEmojiSupport() bool {
	if runtime.GOOS != "windows" {
		return true
	}
	if os.Getenv("WT_SESSION") != "" {
		return true
	}
	return os.Getenv("SESSIONNAME") == ""
}

// Emoji returns e if the terminal can (probably) render it, else an empty string
func Emoji(e string) string {
	if !emojiSupport || !EmojiEnabled {
		return ""
	}
	return e
}
