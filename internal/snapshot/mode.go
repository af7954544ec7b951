// Package snapshot renders a code snippet as it would appear inside a modal
// text editor: syntax-highlighted markup with a cursor or selection overlay
// and a mode line trailer.
package snapshot

import (
	"fmt"
	"strings"
)

// Mode represents the editor mode being depicted.
type Mode int

const (
	// ModeNormal shows a block cursor on the character at the cursor offset.
	ModeNormal Mode = iota
	// ModeInsert shows a bar cursor between characters.
	ModeInsert
	// ModeVisual shows a character-wise selection with a block cursor on its
	// last character.
	ModeVisual
)

// String returns the mode name as shown in the status bar.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeVisual:
		return "VISUAL"
	default:
		return "UNKNOWN"
	}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "normal", "n":
		return ModeNormal, nil
	case "insert", "i":
		return ModeInsert, nil
	case "visual", "v":
		return ModeVisual, nil
	default:
		return ModeNormal, fmt.Errorf("unknown mode %q", s)
	}
}
