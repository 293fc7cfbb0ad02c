package simulator

// engineChangedMsg is sent when the quiz engine signals a state change.
type engineChangedMsg struct{}

// startedMsg is sent when the first question has arrived or Start failed.
type startedMsg struct {
	Err error
}

// advancedMsg is sent when Advance returns.
type advancedMsg struct {
	Err error
}

// timerTickMsg is sent every second while the countdown runs. Gen
// discards ticks from an earlier session.
type timerTickMsg struct {
	Gen int
}
