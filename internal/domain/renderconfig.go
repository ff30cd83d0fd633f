package domain

// RenderConfig is the mutable per-session card configuration. Every numeric
// field stays inside its configured bounds after any mutation; the command
// interpreter clamps, it never rejects an in-vocabulary numeric request.
type RenderConfig struct {
	Text         string  `json:"text"`
	FontSize     int     `json:"font_size"`
	LineSpacing  float64 `json:"line_spacing"`
	CurveEnabled bool    `json:"curve_enabled"`
	OffsetX      int     `json:"offset_x"`
	OffsetY      int     `json:"offset_y"`
	Role         string  `json:"role"`
}

// Clone returns an independent copy. Mutation rules operate on a clone and
// commit it in one assignment, so a failed command never leaves a
// half-mutated configuration behind.
func (c *RenderConfig) Clone() *RenderConfig {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
