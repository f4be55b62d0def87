package batch

import (
	"strings"

	"github.com/Angki/bandcamp-codes-verificator/pkg/verify"
)

// ParseCodes turns a newline-delimited block of text into an ordered list
// of codes. Line endings are normalized, surrounding whitespace is trimmed,
// blank lines are dropped and over-long codes are truncated. Duplicates are
// kept; every submitted code is verified independently.
func ParseCodes(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var codes []string
	for _, line := range strings.Split(raw, "\n") {
		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}
		if len(code) > verify.MaxCodeLength {
			code = code[:verify.MaxCodeLength]
		}
		codes = append(codes, code)
	}
	return codes
}
