package testutil

import "testing"

// Given, When and Then nest scenario steps as subtests so a failure reports
// the whole path, e.g. "Given_an_open_session/When_it_lapses/Then_it_expires".
func Given(t *testing.T, state string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Given", state, fn)
}

func When(t *testing.T, action string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "When", action, fn)
}

func Then(t *testing.T, outcome string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Then", outcome, fn)
}

// And continues the enclosing step, typically a second Then.
func And(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "And", desc, fn)
}

func step(t *testing.T, keyword, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(keyword+" "+desc, fn)
}
