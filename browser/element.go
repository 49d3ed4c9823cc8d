package browser

// ClickMode selects how a click is dispatched.
type ClickMode int

const (
	// ClickProgrammatic calls the element's click() method from script.
	ClickProgrammatic ClickMode = iota
	// ClickPointer moves the simulated cursor onto the element and clicks there.
	ClickPointer
)

func (m ClickMode) String() string {
	if m == ClickPointer {
		return "pointer"
	}
	return "programmatic"
}

// ElementState is a snapshot of the properties that decide whether an
// element can be acted on.
type ElementState struct {
	Visible  bool `json:"visible"`
	Enabled  bool `json:"enabled"`
	Obscured bool `json:"obscured"`
}

// Actionable reports whether the element is visible, enabled and not
// covered by another node.
func (s ElementState) Actionable() bool {
	return s.Visible && s.Enabled && !s.Obscured
}

// Element is a handle to a resolved DOM node. A handle belongs to the page
// generation it was resolved in; any navigation or reload invalidates it and
// callers must resolve the locator again.
type Element struct {
	Locator    Locator
	State      ElementState
	Ref        string
	Generation uint64
}
