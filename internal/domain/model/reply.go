package model

// Button is a single inline button. Data is delivered back as the payload of
// a button event.
type Button struct {
	Text string
	Data string
}

// Menu is a grid of inline buttons.
type Menu struct {
	Rows [][]Button
}

// Row appends a row of buttons and returns the menu for chaining.
func (m *Menu) Row(buttons ...Button) *Menu {
	m.Rows = append(m.Rows, buttons)
	return m
}

// Reply is an outbound message. When Edit is set the transport replaces the
// message identified by MessageID instead of sending a new one.
type Reply struct {
	Text      string
	Menu      *Menu
	Edit      bool
	MessageID int64
}
