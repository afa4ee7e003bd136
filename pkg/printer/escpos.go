package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS command bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

const (
	FontNormal = 0x00
	FontDouble = 0x11 // double width and height
	FontTall   = 0x01 // double height only
)

// Document builds an ESC/POS byte stream.
type Document struct {
	buf   bytes.Buffer
	width int // characters per line: 32 for 58mm paper, 48 for 80mm
}

// NewDocument creates a document for charWidth characters per line.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = 32
	}
	d := &Document{width: charWidth}
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// Width returns the characters per line
func (d *Document) Width() int {
	return d.width
}

func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes s followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints char across the full width.
func (d *Document) Separator(char byte) *Document {
	return d.Text(strings.Repeat(string(char), d.width))
}

// KeyValue prints key on the left and value right-aligned on the same line.
func (d *Document) KeyValue(key, value string) *Document {
	spaces := d.width - len(key) - len(value)
	if spaces < 1 {
		spaces = 1
	}
	return d.Text(key + strings.Repeat(" ", spaces) + value)
}

// DishLine prints "qty x name", wrapping the name under a hanging indent
// when it does not fit on one line.
func (d *Document) DishLine(qty int, name string) *Document {
	prefix := fmt.Sprintf("%d x ", qty)
	indent := strings.Repeat(" ", len(prefix))
	room := d.width - len(prefix)
	if room < 8 {
		return d.Text(prefix + name)
	}
	lines := wrap(name, room)
	for i, line := range lines {
		if i == 0 {
			d.Text(prefix + line)
			continue
		}
		d.Text(indent + line)
	}
	return d
}

// NoteLine prints an indented remark under a dish.
func (d *Document) NoteLine(note string) *Document {
	for _, line := range wrap(note, d.width-4) {
		d.Text("  > " + line)
	}
	return d
}

// Beep sounds the buzzer found on most kitchen printers: n times, t*50ms each.
func (d *Document) Beep(n, t byte) *Document {
	d.buf.Write([]byte{ESC, 'B', n, t})
	return d
}

// PartialCut sends the partial cut command.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	current := ""
	for _, w := range words {
		for len(w) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, w[:width])
			w = w[width:]
		}
		switch {
		case current == "":
			current = w
		case len(current)+1+len(w) <= width:
			current += " " + w
		default:
			lines = append(lines, current)
			current = w
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
