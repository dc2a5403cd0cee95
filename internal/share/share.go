// Package share builds the text and links offered by the share buttons and
// announces the countdown to signage displays.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"releaseday/internal/countdown"
)

const whatsAppBase = "https://wa.me/"

// Payload is what the page hands to the Web Share API.
type Payload struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	URL         string `json:"url,omitempty"`
	WhatsAppURL string `json:"whatsapp_url"`
}

func NewPayload(title, text, pageURL string) Payload {
	return Payload{
		Title:       title,
		Text:        text,
		URL:         pageURL,
		WhatsAppURL: WhatsAppURL(text, pageURL),
	}
}

// WhatsAppURL is the fallback used when the browser has no native share.
func WhatsAppURL(text, pageURL string) string {
	msg := strings.TrimSpace(text)
	if pageURL != "" {
		msg += " " + pageURL
	}
	v := url.Values{}
	v.Set("text", msg)
	return whatsAppBase + "?" + v.Encode()
}

// Description returns the meta description for link previews.
func Description(s countdown.State, target countdown.Target, finishedText string) string {
	switch st := s.(type) {
	case countdown.Counting:
		r := st.Remaining
		return fmt.Sprintf("%d days %02d:%02d:%02d left until %s (%s).",
			r.Days, r.Hours, r.Minutes, r.Seconds, target.Label(), target.ZoneName())
	default:
		return finishedText
	}
}
