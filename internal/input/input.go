// Package input turns raw terminal bytes into discrete key presses.
package input

import (
	"bufio"
	"unicode"
)

// Key is a decoded key press.
type Key int

const (
	KeyNone      Key = iota
	KeyP1Left        // a
	KeyP1Right       // d
	KeyP2Left        // left arrow or j
	KeyP2Right       // right arrow or l
	KeyPause         // p
	KeyRestart       // r
	KeyExit          // q, Esc or Ctrl-C
	KeyEnter         // Enter
	KeyBackspace     // Backspace or Delete
	KeyStart         // Space
)

// Event is one key press. Rune is set for letters and digits so the same
// press can be used for initials entry.
type Event struct {
	Key  Key
	Rune rune
}

// Left reports whether e steers player p (0 or 1) left. With shared set,
// both binding sets steer player 0.
func (e Event) Left(p int, shared bool) bool {
	if shared {
		return p == 0 && (e.Key == KeyP1Left || e.Key == KeyP2Left)
	}
	return (p == 0 && e.Key == KeyP1Left) || (p == 1 && e.Key == KeyP2Left)
}

// Right is Left for the other direction.
func (e Event) Right(p int, shared bool) bool {
	if shared {
		return p == 0 && (e.Key == KeyP1Right || e.Key == KeyP2Right)
	}
	return (p == 0 && e.Key == KeyP1Right) || (p == 1 && e.Key == KeyP2Right)
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch     chan byte
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Poll drains all available bytes (non-blocking) and decodes them.
func (s *Stream) Poll() []Event {
	var buf []byte
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return Parse(buf)
}

// Closed reports whether the underlying reader has ended.
func (s *Stream) Closed() bool {
	return s.closed
}

// Parse decodes a chunk of terminal input. Arrow keys arrive as CSI
// sequences (ESC [ C / ESC [ D); an ESC not followed by '[' is the Esc key.
func Parse(buf []byte) []Event {
	var events []Event
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' {
			if i+1 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
				if i+2 < len(buf) {
					switch buf[i+2] {
					case 'C':
						events = append(events, Event{Key: KeyP2Right})
					case 'D':
						events = append(events, Event{Key: KeyP2Left})
					}
					i += 2
				} else {
					i++
				}
				continue
			}
			events = append(events, Event{Key: KeyExit})
			continue
		}

		if ev, ok := decodeByte(b); ok {
			events = append(events, ev)
		}
	}
	return events
}

func decodeByte(b byte) (Event, bool) {
	switch b {
	case '\r', '\n':
		return Event{Key: KeyEnter}, true
	case '\b', '\x7f':
		return Event{Key: KeyBackspace}, true
	case ' ':
		return Event{Key: KeyStart}, true
	case '\x03':
		return Event{Key: KeyExit}, true
	}

	r := rune(b)
	if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
		return Event{}, false
	}
	ev := Event{Rune: r}
	switch unicode.ToLower(r) {
	case 'a':
		ev.Key = KeyP1Left
	case 'd':
		ev.Key = KeyP1Right
	case 'j':
		ev.Key = KeyP2Left
	case 'l':
		ev.Key = KeyP2Right
	case 'p':
		ev.Key = KeyPause
	case 'r':
		ev.Key = KeyRestart
	case 'q':
		ev.Key = KeyExit
	}
	return ev, true
}
