// Package translate holds the types shared by every translation engine:
// the request value, tones, the Engine interface and the error taxonomy.
package translate

import (
	"context"
	"fmt"
	"strings"

	"quicktranslate/internal/settings"
)

// NoContentPlaceholder is returned when a chat engine answers without choices.
const NoContentPlaceholder = "翻译失败：未返回内容"

// Request is one translation call. It is passed by value and never mutated.
type Request struct {
	Text   string
	Target string
	Tone   Tone
}

// Engine is a translation backend.
type Engine interface {
	Name() string
	Translate(ctx context.Context, req Request, snap settings.Snapshot) (string, error)
}

// CredentialChecker is implemented by engines that can tell, without any
// network I/O, whether the snapshot carries what they need.
type CredentialChecker interface {
	CheckCredentials(snap settings.Snapshot) error
}

type Tone string

const (
	ToneDefault  Tone = ""
	ToneFormal   Tone = "Formal"
	ToneCasual   Tone = "Casual"
	ToneAcademic Tone = "Academic"
	ToneCreative Tone = "Creative"
)

// ParseTone matches s case-insensitively. Anything unknown is ToneDefault.
func ParseTone(s string) Tone {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "formal":
		return ToneFormal
	case "casual":
		return ToneCasual
	case "academic":
		return ToneAcademic
	case "creative":
		return ToneCreative
	default:
		return ToneDefault
	}
}

// Instruction is the sentence appended to the system prompt for t.
func (t Tone) Instruction() string {
	switch t {
	case ToneFormal:
		return "Use a professional, formal, and polite tone suitable for business contexts."
	case ToneCasual:
		return "Use a casual, natural, and conversational tone as used in daily life."
	case ToneAcademic:
		return "Use an academic, rigorous, and objective tone with appropriate terminology."
	case ToneCreative:
		return "Use a creative, vivid, and expressive tone with literary devices if appropriate."
	default:
		return "Use a natural and fluent tone."
	}
}

// SystemPrompt builds the instruction for chat-style engines. target is
// normalized before it is embedded.
func SystemPrompt(target string, tone Tone) string {
	return fmt.Sprintf(
		"You are a professional translation engine. Translate the provided text into %s. %s "+
			"Requirements: Output ONLY the translated text without explanations, quotes, Markdown, numbering, or extra content. "+
			"Preserve original line breaks and formatting as much as possible.",
		NormalizeTargetLanguage(target), tone.Instruction())
}
