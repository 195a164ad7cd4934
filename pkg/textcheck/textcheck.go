// Package textcheck classifies slot text against what the device can type.
package textcheck

import (
	"fmt"
	"strings"
)

// characters a JIS keyboard layout on the device cannot produce
const jisUntypable = `_|\`

func HasNonASCII(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] > 127 {
			return true
		}
	}
	return false
}

func HasJISUntypable(text string) bool {
	return strings.ContainsAny(text, jisUntypable)
}

func JISUntypable() []rune {
	return []rune(jisUntypable)
}

func JISUntypableDescription() string {
	return `_ or | or \`
}

type WarningKind int

const (
	WarnNonASCII WarningKind = iota
	WarnJISUntypable
)

type Warning struct {
	Kind    WarningKind
	Message string
}

const (
	nonASCIIMessage = "The device skips non-ASCII characters such as Japanese text. " +
		"They will not be typed; ASCII characters are typed normally."
	jisUntypableMessage = "These characters cannot be typed directly with a Japanese keyboard layout: %s. " +
		"Typing them on the device may produce other characters."
)

// Warnings lists the problems text will run into when typed by the device.
// The JIS check only applies when the drive is set up for a Japanese keyboard.
func Warnings(text string, japaneseKeyboard bool) []Warning {
	var out []Warning
	if HasNonASCII(text) {
		out = append(out, Warning{Kind: WarnNonASCII, Message: nonASCIIMessage})
	}
	if japaneseKeyboard && HasJISUntypable(text) {
		out = append(out, Warning{
			Kind:    WarnJISUntypable,
			Message: fmt.Sprintf(jisUntypableMessage, JISUntypableDescription()),
		})
	}
	return out
}
