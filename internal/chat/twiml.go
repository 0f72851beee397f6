package chat

import (
	"encoding/xml"
	"strings"
)

// TwiML renders a reply message as the TwiML document Twilio expects back
// from an SMS webhook.
func TwiML(message string) string {
	var escaped strings.Builder
	// Writes to a strings.Builder cannot fail.
	_ = xml.EscapeText(&escaped, []byte(message))

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<Response>\n")
	b.WriteString("    <Message>" + escaped.String() + "</Message>\n")
	b.WriteString("</Response>")
	return b.String()
}
