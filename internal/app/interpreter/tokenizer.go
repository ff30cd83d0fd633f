package interpreter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/hikari-dev/pjsk-card/internal/domain"
)

// FirstToken splits a raw command string on the first run of whitespace and
// returns the leading token plus the untouched remainder. Whitespace means
// any Unicode space, full-width U+3000 included, since Chinese input methods
// routinely emit it. Both parts are empty for a blank message.
func FirstToken(message string) (token, remainder string) {
	sanitized := strings.TrimSpace(message)
	if sanitized == "" {
		return "", ""
	}
	idx := strings.IndexFunc(sanitized, unicode.IsSpace)
	if idx < 0 {
		return sanitized, ""
	}
	return sanitized[:idx], strings.TrimSpace(sanitized[idx:])
}

// SplitDotted splits a dotted command token into its head and variant
// segments, discarding empty segments. An all-dot or empty token yields
// ("", nil).
func SplitDotted(token string) (head string, variants []string) {
	var pieces []string
	for _, segment := range strings.Split(token, ".") {
		if segment != "" {
			pieces = append(pieces, segment)
		}
	}
	if len(pieces) == 0 {
		return "", nil
	}
	return pieces[0], pieces[1:]
}

// argPattern matches runs of non-whitespace, keeping double-quoted
// substrings intact. \p{Z} widens the ASCII-only \s to Unicode spaces.
var argPattern = regexp.MustCompile(`(?:[^\s\p{Z}"]+|"[^"]*")+`)

// SplitArgs splits free text into argument tokens, respecting quoted
// substrings and stripping their surrounding quotes.
func SplitArgs(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	matches := argPattern.FindAllString(text, -1)
	args := make([]string, 0, len(matches))
	for _, m := range matches {
		args = append(args, strings.Trim(m, `"`))
	}
	return args
}

// whitespaceRun collapses interior whitespace during sanitization, Unicode
// spaces included.
var whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)

// SanitizeText trims, collapses whitespace runs to single spaces and
// truncates over-long text with an ellipsis.
func SanitizeText(text string, maxLength int) string {
	text = whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	if maxLength > 0 && len([]rune(text)) > maxLength {
		runes := []rune(text)
		text = string(runes[:maxLength-3]) + "..."
	}
	return text
}

var intReplacer = strings.NewReplacer("px", "", "＋", "+", "－", "-")

// ParseInt parses a user-typed integer, tolerating a trailing px unit,
// full-width signs and floating-point input (truncated).
func ParseInt(raw string) (int, error) {
	sanitized := intReplacer.Replace(strings.ToLower(strings.TrimSpace(raw)))
	value, err := strconv.ParseFloat(sanitized, 64)
	if err != nil {
		return 0, &domain.ValidationError{Message: fmt.Sprintf("无法解析数值：%s", raw)}
	}
	return int(value), nil
}

// ParsePositiveInt is ParseInt restricted to values > 0, used for movement
// step amounts.
func ParsePositiveInt(raw string) (int, error) {
	value, err := ParseInt(raw)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, &domain.ValidationError{Message: "位移步长需为正整数。"}
	}
	return value, nil
}

var floatReplacer = strings.NewReplacer("倍", "", "x", "", ",", ".")

// ParseFloat parses a user-typed float, tolerating a trailing multiplier
// marker and a localized decimal comma.
func ParseFloat(raw string) (float64, error) {
	sanitized := floatReplacer.Replace(strings.ToLower(strings.TrimSpace(raw)))
	value, err := strconv.ParseFloat(sanitized, 64)
	if err != nil {
		return 0, &domain.ValidationError{Message: fmt.Sprintf("无法解析数值：%s", raw)}
	}
	return value, nil
}
