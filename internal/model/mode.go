package model

import (
	"fmt"
	"strings"
)

// Mode selects how flash messages are turned into markup.
type Mode int

const (
	ModeUnset Mode = iota
	ModeToastr
	ModeBootstrapAlert
)

func (m Mode) String() string {
	switch m {
	case ModeToastr:
		return "toastr"
	case ModeBootstrapAlert:
		return "bootstrap"
	default:
		return "unset"
	}
}

// ParseMode maps a configuration token to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toastr":
		return ModeToastr, nil
	case "bootstrap", "bootstrap-alert", "alert":
		return ModeBootstrapAlert, nil
	case "", "unset":
		return ModeUnset, nil
	}
	return ModeUnset, fmt.Errorf("unknown presentation mode %q", s)
}
