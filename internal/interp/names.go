package interp

// Well-known interpreter names. The core gives them no special treatment
// beyond registry lookup.
const (
	Console = "console"
	MI2     = "mi2"
	MI3     = "mi3"
	MI4     = "mi4"
	MI      = "mi"
	TUI     = "tui"
	Insight = "insight"
	Lua     = "lua"
)
