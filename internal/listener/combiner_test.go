package listener

import "testing"

func TestShortcutCombo(t *testing.T) {
	c := newCombiner(true, false)

	if _, ok := c.keyDown("ctrl"); ok {
		t.Error("bare modifier emitted an event")
	}
	ev, ok := c.keyDown("s")
	if !ok {
		t.Fatal("modifier + key emitted nothing")
	}
	if ev.Description != "used keyboard shortcut CTRL + S" {
		t.Errorf("Description = %q", ev.Description)
	}
	if ev.Manual {
		t.Error("shortcut marked manual")
	}

	// The chord clears the pressed set, so the next bare key is a plain press.
	ev, ok = c.keyDown("a")
	if !ok {
		t.Fatal("bare key emitted nothing")
	}
	if ev.Description != "pressed A key" {
		t.Errorf("Description = %q", ev.Description)
	}
}

func TestMultiModifierComboSorted(t *testing.T) {
	c := newCombiner(true, false)

	c.keyDown("shift")
	c.keyDown("ctrl")
	ev, ok := c.keyDown("p")
	if !ok {
		t.Fatal("chord emitted nothing")
	}
	if ev.Description != "used keyboard shortcut CTRL + SHIFT + P" {
		t.Errorf("Description = %q", ev.Description)
	}
}

func TestModifiersOnlyStaySilent(t *testing.T) {
	c := newCombiner(true, false)

	for _, k := range []string{"ctrl", "alt", "lshift"} {
		if _, ok := c.keyDown(k); ok {
			t.Errorf("modifier %q emitted an event", k)
		}
	}
}

func TestKeyUpReleasesModifier(t *testing.T) {
	c := newCombiner(true, false)

	c.keyDown("ctrl")
	c.keyUp("ctrl")
	ev, ok := c.keyDown("x")
	if !ok {
		t.Fatal("bare key emitted nothing")
	}
	if ev.Description != "pressed X key" {
		t.Errorf("Description = %q, want plain key press after release", ev.Description)
	}
}

func TestScrollLockManualCapture(t *testing.T) {
	c := newCombiner(false, true)

	for _, name := range []string{"scroll lock", "ScrollLock", "scroll_lock"} {
		ev, ok := c.keyDown(name)
		if !ok {
			t.Errorf("keyDown(%q) emitted nothing", name)
			continue
		}
		if !ev.Manual {
			t.Errorf("keyDown(%q): event not marked manual", name)
		}
		if ev.Description != "manual capture (Scroll Lock)" {
			t.Errorf("keyDown(%q): Description = %q", name, ev.Description)
		}
	}
}

func TestClickCaptureDisabledMutesKeys(t *testing.T) {
	c := newCombiner(false, true)

	c.keyDown("ctrl")
	if _, ok := c.keyDown("s"); ok {
		t.Error("shortcut emitted while click capture disabled")
	}
	if _, ok := c.keyDown("a"); ok {
		t.Error("bare key emitted while click capture disabled")
	}
}

func TestButtonName(t *testing.T) {
	cases := map[uint16]string{1: "left", 2: "middle", 3: "right", 9: "button-9"}
	for b, want := range cases {
		if got := buttonName(b); got != want {
			t.Errorf("buttonName(%d) = %q, want %q", b, got, want)
		}
	}
}
