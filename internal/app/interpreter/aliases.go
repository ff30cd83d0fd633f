package interpreter

import (
	"fmt"
	"strings"
)

// AliasTable maps case-insensitive alias strings to canonical names. Tables
// are built once at startup and read-only afterwards; lookups try the token
// as given first and lowercased second, so mixed-case input resolves without
// losing aliases that are themselves case-sensitive strings.
type AliasTable struct {
	lookup map[string]string
}

// NewAliasTable builds the lookup from canonical-name -> alias-set groups.
// Every alias is inserted twice, as given and lowercased. An alias that
// would resolve to two different canonical names is a configuration bug and
// fails the build instead of silently letting the last registration win.
func NewAliasTable(groups map[string][]string) (*AliasTable, error) {
	lookup := make(map[string]string)
	insert := func(alias, canonical string) error {
		if prev, ok := lookup[alias]; ok && prev != canonical {
			return fmt.Errorf("alias %q is ambiguous: maps to both %q and %q", alias, prev, canonical)
		}
		lookup[alias] = canonical
		return nil
	}
	for canonical, aliases := range groups {
		for _, alias := range aliases {
			if err := insert(alias, canonical); err != nil {
				return nil, err
			}
			if err := insert(strings.ToLower(alias), canonical); err != nil {
				return nil, err
			}
		}
	}
	return &AliasTable{lookup: lookup}, nil
}

// MustAliasTable is NewAliasTable for the static built-in tables, where an
// ambiguous alias is a programming error.
func MustAliasTable(groups map[string][]string) *AliasTable {
	t, err := NewAliasTable(groups)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve maps a token to its canonical name, trying exact then lowercased.
func (t *AliasTable) Resolve(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	stripped := strings.TrimSpace(token)
	if canonical, ok := t.lookup[stripped]; ok {
		return canonical, true
	}
	if canonical, ok := t.lookup[strings.ToLower(stripped)]; ok {
		return canonical, true
	}
	return "", false
}

// Canonical command names the interpreter dispatches on.
const (
	cmdText        = "text"
	cmdFontSize    = "font_size"
	cmdLineSpacing = "line_spacing"
	cmdCurve       = "curve"
	cmdPosition    = "position"
	cmdRole        = "role"
)

var commandAliases = MustAliasTable(map[string][]string{
	cmdText:        {"文本", "文字", "内容", "text", "message"},
	cmdFontSize:    {"字号", "字体", "字", "font", "fontsize", "font-size"},
	cmdLineSpacing: {"行距", "间距", "行间距", "spacing", "lines"},
	cmdCurve:       {"曲线", "弧线", "曲线模式", "curve"},
	cmdPosition:    {"位置", "坐标", "offset", "pos"},
	cmdRole:        {"人物", "角色", "立绘", "role", "avatar"},
})

const (
	variantIncrease = "increase"
	variantDecrease = "decrease"
)

var sizeVariants = MustAliasTable(map[string][]string{
	variantIncrease: {"大", "增", "加", "+", "increase", "up", "plus"},
	variantDecrease: {"小", "减", "降", "-", "decrease", "down", "minus"},
})

const (
	curveOn     = "on"
	curveOff    = "off"
	curveToggle = "toggle"
)

var curveVariants = MustAliasTable(map[string][]string{
	curveOn:     {"开", "开启", "on", "true", "enable"},
	curveOff:    {"关", "关闭", "off", "false", "disable"},
	curveToggle: {"切换", "toggle", "switch"},
})

const (
	dirUp    = "up"
	dirDown  = "down"
	dirLeft  = "left"
	dirRight = "right"
)

var directionAliases = MustAliasTable(map[string][]string{
	dirUp:    {"上", "up", "u", "↑"},
	dirDown:  {"下", "down", "d", "↓"},
	dirLeft:  {"左", "left", "l", "←"},
	dirRight: {"右", "right", "r", "→"},
})
