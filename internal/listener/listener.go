// Package listener turns global mouse and keyboard hook events into step
// capture requests. A step is emitted per mouse button release and per
// keyboard shortcut (modifier + key); Scroll Lock acts as a manual capture
// hotkey when enabled.
package listener

import (
	"context"
	"fmt"
	"time"

	hook "github.com/robotn/gohook"
)

// Event is one qualifying user action.
type Event struct {
	// Description is the human-readable action text, without the window
	// prefix (the recorder adds "In '<window>', ...").
	Description string
	// Manual marks a Scroll Lock capture request.
	Manual bool
	Time   time.Time
}

// Listener subscribes to the global input hook and publishes Events.
type Listener struct {
	onClick  bool
	onHotkey bool
	events   chan Event
	combiner *combiner
}

// New returns a Listener. onClick enables per-click and per-shortcut
// capture; onHotkey enables Scroll Lock manual capture.
func New(onClick, onHotkey bool) *Listener {
	return &Listener{
		onClick:  onClick,
		onHotkey: onHotkey,
		events:   make(chan Event, 16),
		combiner: newCombiner(onClick, onHotkey),
	}
}

// Run subscribes to the global hook and dispatches until ctx is cancelled.
// The events channel is closed on return.
func (l *Listener) Run(ctx context.Context) error {
	defer close(l.events)

	evs := hook.Start()
	defer hook.End()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-evs:
			if !ok {
				return nil
			}
			l.handle(ev)
		}
	}
}

// Events returns the channel the recorder consumes.
func (l *Listener) Events() <-chan Event {
	return l.events
}

func (l *Listener) handle(ev hook.Event) {
	switch ev.Kind {
	case hook.MouseUp:
		if !l.onClick {
			return
		}
		l.emit(Event{
			Description: fmt.Sprintf("released %s mouse button at (%d, %d)",
				buttonName(ev.Button), ev.X, ev.Y),
			Time: time.Now(),
		})
	case hook.KeyDown, hook.KeyHold:
		name := keyName(ev.Rawcode)
		if out, ok := l.combiner.keyDown(name); ok {
			out.Time = time.Now()
			l.emit(out)
		}
	case hook.KeyUp:
		l.combiner.keyUp(keyName(ev.Rawcode))
	}
}

// emit drops events when the recorder is backed up rather than blocking the
// hook callback path.
func (l *Listener) emit(e Event) {
	select {
	case l.events <- e:
	default:
	}
}

func buttonName(b uint16) string {
	switch b {
	case 1:
		return "left"
	case 2:
		return "middle"
	case 3:
		return "right"
	default:
		return fmt.Sprintf("button-%d", b)
	}
}

func keyName(rawcode uint16) string {
	name := hook.RawcodetoKeychar(rawcode)
	if name == "" {
		return fmt.Sprintf("key-%d", rawcode)
	}
	return name
}
