package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("turn.headline", map[string]any{"Side": "White"})
	if err != nil || got != "White's Turn!" {
		t.Fatalf("turn.headline = %q (%v)", got, err)
	}
	got, err = c.Render("result.win", map[string]any{"Winner": "Black"})
	if err != nil || got != "Winner: Black" {
		t.Fatalf("result.win = %q (%v)", got, err)
	}
	if got, _ := c.Render("result.draw", nil); got != "Draw" {
		t.Fatalf("result.draw = %q", got)
	}
	if _, err := c.Render("result.win", map[string]any{}); err == nil {
		t.Fatalf("missing field should error")
	}
	if _, err := c.Render("nope", nil); err == nil {
		t.Fatalf("unknown key should error")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("result:\n  draw: \"Remis\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, _ := c.Render("result.draw", nil); got != "Remis" {
		t.Fatalf("override not applied: %q", got)
	}
	if got, _ := c.Render("menu.headline", nil); got != "Choose a game mode" {
		t.Fatalf("defaults should survive: %q", got)
	}
}

func TestOverrideDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("result:\n  draw: x\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	_, err := New(dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate override key") {
		t.Fatalf("want duplicate key error, got %v", err)
	}
}

func TestNonStringLeafRejected(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("turn:\n  headline: 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("numeric leaf accepted")
	}
}

func TestKeysIncludeModes(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	keys := strings.Join(c.Keys(), ",")
	for _, want := range []string{"mode.hotseat", "mode.sim", "result.reason.inactivity"} {
		if !strings.Contains(keys, want) {
			t.Fatalf("missing key %s in %s", want, keys)
		}
	}
}
