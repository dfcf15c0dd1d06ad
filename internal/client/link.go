package client

import (
	"errors"
	"net/url"
	"strings"
)

const chatBaseURL = "https://wa.me/send"

var ErrNoDigits = errors.New("phone number has no digits")

// NormalizePhone strips everything but digits from a raw phone string.
// Click-to-chat links take a bare digit string: no "+", no separators.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildChatLink builds the click-to-chat URL for one candidate. A phone
// that normalizes to nothing is a construction failure: there is no
// link to attempt.
func BuildChatLink(phone, message string) (string, error) {
	digits := NormalizePhone(phone)
	if digits == "" {
		return "", ErrNoDigits
	}

	q := url.Values{}
	q.Set("phone", digits)
	q.Set("text", message)
	return chatBaseURL + "?" + q.Encode(), nil
}
