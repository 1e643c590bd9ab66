package bar

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ItsNotGoodName/wlbar/internal/workspace"
)

const ellipsis = "..."

// Truncate shortens s to at most max runes, ending it with an ellipsis.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	keep := max - len(ellipsis)
	if keep < 0 {
		keep = 0
	}

	runes := []rune(s)
	return string(runes[:keep]) + ellipsis
}

func workspaceName(info workspace.Info) string {
	if info.Name == "" {
		return strconv.Itoa(info.Index)
	}
	return info.Name
}

// FormatCommand expands {name}, {index} and {group}. An empty name expands to
// the index.
func FormatCommand(format string, info workspace.Info) string {
	return strings.NewReplacer(
		"{name}", workspaceName(info),
		"{index}", strconv.Itoa(info.Index),
		"{group}", strconv.FormatUint(uint64(info.Group), 10),
	).Replace(format)
}

// FormatLabel is FormatCommand but never returns an empty label.
func FormatLabel(format string, info workspace.Info) string {
	if label := FormatCommand(format, info); label != "" {
		return label
	}
	return workspaceName(info)
}
