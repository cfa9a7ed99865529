package listener

import (
	"sort"
	"strings"
)

// modifierKeys are tracked but never emit a step on their own.
var modifierKeys = map[string]bool{
	"ctrl": true, "lctrl": true, "rctrl": true,
	"alt": true, "lalt": true, "ralt": true,
	"shift": true, "lshift": true, "rshift": true,
	"cmd": true, "lcmd": true, "rcmd": true,
}

// scrollLockNames covers the hook library's spellings across platforms.
var scrollLockNames = map[string]bool{
	"scroll lock": true, "scrolllock": true, "scroll_lock": true,
}

// combiner holds the pressed-key set and decides which key events become
// steps: a modifier plus a non-modifier emits one shortcut step and clears
// the set; a bare non-modifier emits a key-press step.
type combiner struct {
	onClick  bool
	onHotkey bool
	pressed  map[string]bool
}

func newCombiner(onClick, onHotkey bool) *combiner {
	return &combiner{
		onClick:  onClick,
		onHotkey: onHotkey,
		pressed:  make(map[string]bool),
	}
}

func (c *combiner) keyDown(name string) (Event, bool) {
	if c.onHotkey && scrollLockNames[strings.ToLower(name)] {
		return Event{Description: "manual capture (Scroll Lock)", Manual: true}, true
	}
	if !c.onClick {
		return Event{}, false
	}

	c.pressed[name] = true

	var mods, rest []string
	for k := range c.pressed {
		if modifierKeys[strings.ToLower(k)] {
			mods = append(mods, k)
		} else {
			rest = append(rest, k)
		}
	}
	sort.Strings(mods)
	sort.Strings(rest)

	if len(mods) > 0 && len(rest) > 0 {
		combo := append(mods, rest...)
		for i, k := range combo {
			combo[i] = strings.ToUpper(k)
		}
		c.pressed = make(map[string]bool)
		return Event{Description: "used keyboard shortcut " + strings.Join(combo, " + ")}, true
	}
	if len(mods) == 0 {
		return Event{Description: "pressed " + strings.ToUpper(name) + " key"}, true
	}
	// Modifiers only: wait for the rest of the chord.
	return Event{}, false
}

func (c *combiner) keyUp(name string) {
	delete(c.pressed, name)
}
