package strings

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// WrapString - wrap the text by words. Words longer than maxLength are split
func WrapString(v string, maxLength int) string {
	if maxLength <= 0 {
		return v
	}
	strs := strings.Split(wordwrap.WrapString(v, uint(maxLength)), "\n")
	res := make([]string, 0, len(strs))
	for _, s := range strs {
		res = append(res, splitLong(s, maxLength)...)
	}
	return strings.Join(res, "\n")
}

func splitLong(s string, maxLength int) []string {
	if len(s) <= maxLength {
		return []string{s}
	}
	var res []string
	for len(s) > maxLength {
		res = append(res, s[:maxLength])
		s = s[maxLength:]
	}
	return append(res, s)
}
