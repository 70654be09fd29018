package model

// Mode is the tutoring mode a session is in.
type Mode string

// Session modes.
const (
	ModeGeneral   Mode = "general"
	ModeWriting   Mode = "writing"
	ModeSpeaking  Mode = "speaking"
	ModeReading   Mode = "reading"
	ModeListening Mode = "listening"
	ModeMiniApp   Mode = "mini_app"
)

var modes = []Mode{ModeGeneral, ModeWriting, ModeSpeaking, ModeReading, ModeListening, ModeMiniApp}

// Modes returns every valid mode.
func Modes() []Mode {
	out := make([]Mode, len(modes))
	copy(out, modes)
	return out
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, v := range modes {
		if v == m {
			return true
		}
	}
	return false
}

// ParseMode converts s into a Mode.
func ParseMode(s string) (Mode, bool) {
	m := Mode(s)
	return m, m.Valid()
}
