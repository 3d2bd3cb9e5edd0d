package modeldesc

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const indent = "  "

type attrs []xml.Attr

func (a *attrs) add(name, value string) {
	*a = append(*a, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

func (a *attrs) addInt(name string, v int) {
	a.add(name, strconv.Itoa(v))
}

func (a *attrs) addBool(name string, v bool) {
	a.add(name, strconv.FormatBool(v))
}

// encoder wraps xml.Encoder with a sticky error so element writers can be
// chained without checking every token.
type encoder struct {
	w     io.Writer
	enc   *xml.Encoder
	depth int
	err   error
}

func newEncoder(w io.Writer) *encoder {
	_, err := io.WriteString(w, xml.Header)
	enc := xml.NewEncoder(w)
	enc.Indent("", indent)
	return &encoder{w: w, enc: enc, err: err}
}

func (e *encoder) token(t xml.Token) {
	if e.err != nil {
		return
	}
	e.err = e.enc.EncodeToken(t)
}

func (e *encoder) start(name string, a attrs) {
	e.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: a})
	e.depth++
}

func (e *encoder) end(name string) {
	e.depth--
	e.token(xml.EndElement{Name: xml.Name{Local: name}})
}

// leaf writes an element with attributes and no children.
func (e *encoder) leaf(name string, a attrs) {
	e.start(name, a)
	e.end(name)
}

// comment writes a comment on its own line. xml.Encoder does not indent
// comments, so the line is written around it.
func (e *encoder) comment(text string) {
	if e.err != nil {
		return
	}
	if strings.Contains(text, "--") {
		e.err = fmt.Errorf("comment %q contains \"--\"", text)
		return
	}
	if e.err = e.enc.Flush(); e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, "\n%s<!-- %s -->", strings.Repeat(indent, e.depth), text)
}

func (e *encoder) close() error {
	if e.err != nil {
		return e.err
	}
	return e.enc.Flush()
}
