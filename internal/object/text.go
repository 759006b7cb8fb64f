package object

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// Text is a line of overlay text. Coordinates are 1-based terminal positions.
type Text struct {
	X     int
	Y     int
	Value string
}

// Centered returns a Text whose middle sits on column centerX.
func Centered(centerX, y int, value string) Text {
	return Text{X: centerX - utf8.RuneCountInString(value)/2, Y: y, Value: value}
}

// Draw writes the text at its position using ANSI cursor movement.
func (t Text) Draw(w io.Writer) error {
	if t.Value == "" {
		return nil
	}
	x := max(t.X, 1)
	y := max(t.Y, 1)
	if _, err := fmt.Fprintf(w, "\033[%d;%dH%s", y, x, t.Value); err != nil {
		return err
	}
	return nil
}
