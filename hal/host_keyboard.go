//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var keyMap = [...]struct {
	key  ebiten.Key
	code KeyCode
}{
	{ebiten.KeyEscape, KeyEscape},
	{ebiten.KeySpace, KeySpace},
	{ebiten.KeyEnter, KeyEnter},
	{ebiten.KeyArrowUp, KeyUp},
	{ebiten.KeyArrowDown, KeyDown},
}

// pollKeys returns the keys pressed since the previous update plus any
// typed characters.
func pollKeys() []KeyEvent {
	var out []KeyEvent
	for _, k := range keyMap {
		if inpututil.IsKeyJustPressed(k.key) {
			out = append(out, KeyEvent{Code: k.code})
		}
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		if r == ' ' {
			continue
		}
		out = append(out, KeyEvent{Rune: r})
	}
	return out
}
