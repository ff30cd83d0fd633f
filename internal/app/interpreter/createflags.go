package interpreter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/hikari-dev/pjsk-card/internal/domain"
	"github.com/hikari-dev/pjsk-card/internal/observability"
)

// CreateOptions is a parsed one-shot creation flag string. Numeric values
// stay raw here: the command surface silently skips malformed numbers
// instead of rejecting the whole message, so conversion happens afterwards
// with per-field tolerance.
type CreateOptions struct {
	Text        string `short:"n" description:"card text"`
	FontSize    string `short:"s" description:"absolute font size"`
	LineSpacing string `short:"l" description:"line spacing multiplier"`
	Curve       bool   `short:"c" description:"enable curved text"`
	OffsetX     string `short:"x" description:"x offset in pixels"`
	OffsetY     string `short:"y" description:"y offset in pixels"`
	Role        string `short:"r" description:"persona name, or random marker"`
	DefaultFont bool   `long:"daf" description:"use the default font"`
}

// CreateValues is CreateOptions after numeric conversion; nil pointers mean
// the flag was absent or unparsable.
type CreateValues struct {
	Text        *string
	FontSize    *int
	LineSpacing *float64
	Curve       bool
	OffsetX     *int
	OffsetY     *int
	Role        *string
	DefaultFont bool
}

// valueShorts are the short options that consume the following token.
var valueShorts = map[string]bool{
	"-n": true, "-s": true, "-l": true, "-x": true, "-y": true, "-r": true,
}

var signedNumber = regexp.MustCompile(`^[-+＋－]?\d+(\.\d+)?$`)

// IsCreateFlags reports whether a draw remainder is a flag-style creation
// string rather than plain card text.
func IsCreateFlags(remainder string) bool {
	args := SplitArgs(remainder)
	for _, arg := range args {
		if valueShorts[arg] || arg == "-c" || arg == "--daf" {
			return true
		}
	}
	return false
}

// ParseCreateFlags parses a one-shot creation string such as
//
//	-n "hello world" -s 48 -c -x 12 -y -6 -r miku -l 1.8 --daf
//
// Unrecognized flags are skipped, not errors; so are malformed numbers.
func ParseCreateFlags(remainder string) *CreateValues {
	args := normalizeFlagArgs(SplitArgs(remainder))

	var opts CreateOptions
	parser := flags.NewParser(&opts, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(args); err != nil {
		// A value the library refuses outright (stray terminator etc.)
		// downgrades to "no options"; the flag string is never a hard error.
		observability.Logger().Debug("create flags not parsable", "error", err)
		return &CreateValues{}
	}
	return opts.resolve()
}

// normalizeFlagArgs glues a negative numeric value onto its preceding short
// option ("-y -6" -> "-y=-6") so the flag parser does not read it as another
// option.
func normalizeFlagArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if valueShorts[arg] && i+1 < len(args) && strings.HasPrefix(args[i+1], "-") && signedNumber.MatchString(args[i+1]) {
			out = append(out, arg+"="+args[i+1])
			i++
			continue
		}
		out = append(out, arg)
	}
	return out
}

// randomMarkers request a random persona in the -r value position.
var randomMarkers = map[string]bool{"-r": true, "random": true, "随机": true}

// ApplyCreate overlays parsed creation values onto cfg, clamping numerics
// and resolving the persona. An unresolvable persona is the only rejection;
// everything else degrades to the existing value.
func (i *Interpreter) ApplyCreate(cfg *domain.RenderConfig, v *CreateValues) error {
	if v.Role != nil {
		role := strings.TrimSpace(*v.Role)
		if randomMarkers[strings.ToLower(role)] {
			cfg.Role = i.pickRandomRole(cfg.Role)
		} else {
			resolved, ok := i.personas.Resolve(role)
			if !ok {
				return &domain.ValidationError{Message: fmt.Sprintf("未识别的角色：%s", role)}
			}
			cfg.Role = resolved
		}
	}
	if v.Text != nil {
		cfg.Text = SanitizeText(*v.Text, i.rules.MaxTextLength)
	}
	if v.FontSize != nil {
		cfg.FontSize = clampInt(*v.FontSize, i.rules.FontSizeMin, i.rules.FontSizeMax)
	}
	if v.LineSpacing != nil {
		cfg.LineSpacing = round2(clampFloat(*v.LineSpacing, i.rules.LineSpacingMin, i.rules.LineSpacingMax))
	}
	if v.OffsetX != nil {
		cfg.OffsetX = clampInt(*v.OffsetX, i.rules.OffsetMin, i.rules.OffsetMax)
	}
	if v.OffsetY != nil {
		cfg.OffsetY = clampInt(*v.OffsetY, i.rules.OffsetMin, i.rules.OffsetMax)
	}
	if v.Curve {
		cfg.CurveEnabled = true
	}
	return nil
}

func (o *CreateOptions) resolve() *CreateValues {
	v := &CreateValues{Curve: o.Curve, DefaultFont: o.DefaultFont}
	if o.Text != "" {
		text := o.Text
		v.Text = &text
	}
	if o.Role != "" {
		role := o.Role
		v.Role = &role
	}
	if o.FontSize != "" {
		if n, err := ParseInt(o.FontSize); err == nil {
			v.FontSize = &n
		}
	}
	if o.OffsetX != "" {
		if n, err := ParseInt(o.OffsetX); err == nil {
			v.OffsetX = &n
		}
	}
	if o.OffsetY != "" {
		if n, err := ParseInt(o.OffsetY); err == nil {
			v.OffsetY = &n
		}
	}
	if o.LineSpacing != "" {
		if f, err := ParseFloat(o.LineSpacing); err == nil {
			v.LineSpacing = &f
		}
	}
	return v
}
