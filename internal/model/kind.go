package model

import "strings"

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

func (k Kind) String() string { return string(k) }

// ParseKind normalizes input; empty => text.
// Returns (value, true) if recognized; otherwise (text, false) so that
// HTTP callers never fail on an unknown message_type.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return KindText, true
	case "image":
		return KindImage, true
	default:
		return KindText, false
	}
}

func (k Kind) Valid() bool {
	return k == KindText || k == KindImage
}
