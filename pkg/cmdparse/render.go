package cmdparse

import (
	"fmt"
	"strings"
)

// RenderMode selects how help and usage text is formatted.
type RenderMode int

const (
	// RenderPlain produces plain terminal text.
	RenderPlain RenderMode = iota
	// RenderMarkdown produces Markdown with emphasised class and command names.
	RenderMarkdown
)

func (m RenderMode) String() string {
	switch m {
	case RenderMarkdown:
		return "markdown"
	default:
		return "plain"
	}
}

// ParseRenderMode converts a configuration string to a RenderMode.
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain", "text":
		return RenderPlain, nil
	case "markdown", "md":
		return RenderMarkdown, nil
	default:
		return RenderPlain, fmt.Errorf("unknown render mode %q", s)
	}
}
