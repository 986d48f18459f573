package viewer

import (
	"errors"
	"unicode/utf8"
)

type keyKind int

const (
	keyUnknown keyKind = iota
	keyNext
	keyPrev
	keyQuit
	keyEscape
	keyCtrlC
	keySettings
	keyMarkRead
	keySizeUp
	keySizeDown
	keyFamily
	keyMargin
	keyLineHeight
	keyTheme
)

type keyEvent struct {
	kind keyKind
}

func (v *Viewer) readKeyEvent() (keyEvent, error) {
	if v.reader == nil {
		return keyEvent{}, errors.New("no reader available")
	}
	b, err := v.reader.ReadByte()
	if err != nil {
		return keyEvent{}, err
	}

	switch b {
	case 0x1b:
		return v.parseEscapeSequence()
	case 'q', 'Q':
		return keyEvent{kind: keyQuit}, nil
	case 0x03:
		return keyEvent{kind: keyCtrlC}, nil
	case ' ', '\r', '\n', 'n', 'j':
		return keyEvent{kind: keyNext}, nil
	case 'p', 'b', 'k':
		return keyEvent{kind: keyPrev}, nil
	case 's', 'S':
		return keyEvent{kind: keySettings}, nil
	case 'r', 'R':
		return keyEvent{kind: keyMarkRead}, nil
	case '+', '=':
		return keyEvent{kind: keySizeUp}, nil
	case '-', '_':
		return keyEvent{kind: keySizeDown}, nil
	case 'f', 'F':
		return keyEvent{kind: keyFamily}, nil
	case 'm', 'M':
		return keyEvent{kind: keyMargin}, nil
	case 'l', 'L':
		return keyEvent{kind: keyLineHeight}, nil
	case 't', 'T':
		return keyEvent{kind: keyTheme}, nil
	}

	if b < utf8.RuneSelf {
		return keyEvent{kind: keyUnknown}, nil
	}
	// drain the rest of a multibyte rune
	buf := []byte{b}
	for !utf8.FullRune(buf) && len(buf) < utf8.UTFMax {
		next, err := v.reader.ReadByte()
		if err != nil {
			break
		}
		buf = append(buf, next)
	}
	return keyEvent{kind: keyUnknown}, nil
}

func (v *Viewer) parseEscapeSequence() (keyEvent, error) {
	if v.reader.Buffered() == 0 {
		return keyEvent{kind: keyEscape}, nil
	}
	next, err := v.reader.ReadByte()
	if err != nil {
		return keyEvent{kind: keyEscape}, nil
	}
	if next != '[' {
		return keyEvent{kind: keyEscape}, nil
	}
	return v.parseCSI()
}

func (v *Viewer) parseCSI() (keyEvent, error) {
	var seq []byte
	for {
		b, err := v.reader.ReadByte()
		if err != nil {
			return keyEvent{kind: keyEscape}, nil
		}
		seq = append(seq, b)
		if (b >= 'A' && b <= 'Z') || b == '~' {
			break
		}
		if len(seq) > 5 {
			break
		}
	}

	switch seq[len(seq)-1] {
	case 'C', 'B': // right, down
		return keyEvent{kind: keyNext}, nil
	case 'D', 'A': // left, up
		return keyEvent{kind: keyPrev}, nil
	case '~':
		switch string(seq[:len(seq)-1]) {
		case "5":
			return keyEvent{kind: keyPrev}, nil
		case "6":
			return keyEvent{kind: keyNext}, nil
		}
	}
	return keyEvent{kind: keyUnknown}, nil
}
