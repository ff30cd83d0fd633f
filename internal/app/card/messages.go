package card

import (
	"fmt"
	"strings"

	"github.com/hikari-dev/pjsk-card/internal/domain"
)

// quickActionLine closes every reply so frequent adjustments stay one
// copy-paste away.
const quickActionLine = "快捷操作：/pjsk.调整 字号.大 ｜ 字号.小 ｜ 行距.大 ｜ 行距.小 ｜ 位置.上 ｜ 位置.下 ｜ 位置.左 ｜ 位置.右 ｜ 曲线 切换"

// Reply is what the boundary hands back to the chat framework: formatted
// text plus, when a render succeeded, the card image bytes.
type Reply struct {
	Text  string
	Image []byte
}

func stateLines(cfg *domain.RenderConfig) []string {
	curveState := "关闭"
	if cfg.CurveEnabled {
		curveState = "开启"
	}
	return []string{
		fmt.Sprintf("文本：%s", cfg.Text),
		fmt.Sprintf("字号：%dpx", cfg.FontSize),
		fmt.Sprintf("行距：%.2f", cfg.LineSpacing),
		fmt.Sprintf("曲线：%s", curveState),
		fmt.Sprintf("位置：X %d / Y %d", cfg.OffsetX, cfg.OffsetY),
		fmt.Sprintf("人物：%s", cfg.Role),
	}
}

func summaryText(cfg *domain.RenderConfig, headline string) string {
	var lines []string
	if headline != "" {
		lines = append(lines, headline, "")
	}
	lines = append(lines, stateLines(cfg)...)
	lines = append(lines, "", quickActionLine)
	return strings.Join(lines, "\n")
}

func guidanceText() string {
	lines := []string{
		"pjsk.调整 指令指南：",
		"• 文本 <内容> —— 更新显示文本。",
		"• 字号 <数值> —— 设置字号；字号.大 / 字号.小 调整字号。",
		"• 行距 <数值> —— 设置行距；行距.大 / 行距.小 调整间距。",
		"• 曲线 [开|关|切换] —— 开关曲线文本效果。",
		"• 位置.<上|下|左|右> [步长] —— 调整文本位置。",
		"• 人物 <名称> —— 切换立绘；人物 -r 随机选择。",
		"",
		quickActionLine,
	}
	return strings.Join(lines, "\n")
}

// ErrorText formats a user-addressable failure with its remediation hint.
func ErrorText(message string) string {
	lines := []string{
		fmt.Sprintf("⚠️ %s", message),
		"",
		"发送 /pjsk.draw 创建或刷新卡面，或使用 /pjsk.调整 获取指令帮助。",
		"",
		quickActionLine,
	}
	return strings.Join(lines, "\n")
}

func personaListText(catalog *domain.PersonaCatalog) string {
	lines := []string{"可用角色："}
	for _, group := range catalog.Groups() {
		lines = append(lines, fmt.Sprintf("【%s】%s", group, strings.Join(catalog.Members(group), " / ")))
	}
	lines = append(lines, "", "使用 /pjsk.调整 人物 <名称> 切换，或 人物 -r 随机选择。")
	return strings.Join(lines, "\n")
}
