/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package scene

import (
	"fmt"
	"html"
	"io"
	"time"

	svg "github.com/ajstarks/svgo"
)

// errWriter retains the first error encountered while writing, and discards
// everything after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return len(p), nil
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, nil
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

// svgAttrs returns the receiver's SVG attributes, sorted, in the
// 'name="value"' form svgo accepts.
func (e *Element) svgAttrs(skip ...string) []string {
	ret := []string{}
	if e.Class != "" {
		ret = append(ret, attr("class", e.Class))
	}
	if e.Key != "" {
		ret = append(ret, attr("data-key", e.Key))
	}
outer:
	for _, k := range e.sortedAttrs() {
		for _, s := range skip {
			if k == s {
				continue outer
			}
		}
		ret = append(ret, attr(k, e.Attrs[k]))
	}
	for _, l := range e.Listeners {
		ret = append(ret, attr("data-on-"+string(l.Event), l.Action))
	}
	return ret
}

func (e *Element) writeSVG(canvas *svg.SVG) {
	switch e.Kind {
	case Group:
		canvas.Group(e.svgAttrs()...)
		e.writeChildren(canvas)
		canvas.Gend()
	case ClipPath:
		canvas.ClipPath(e.svgAttrs()...)
		e.writeChildren(canvas)
		canvas.ClipEnd()
	case Defs:
		canvas.Def()
		e.writeChildren(canvas)
		canvas.DefEnd()
	case Filter:
		canvas.Filter(e.Attrs["id"], e.svgAttrs("id")...)
		e.writeChildren(canvas)
		canvas.Fend()
	case Path:
		canvas.Path(e.Attrs["d"], e.svgAttrs("d")...)
	default:
		// svgo's Rect, Circle, Line and Text take int coordinates, so these
		// are written by hand with svgAttrs.
		e.writeElement(canvas.Writer)
		e.writeChildren(canvas)
		e.closeElement(canvas.Writer)
	}
}

func (e *Element) writeChildren(canvas *svg.SVG) {
	for _, child := range e.Children {
		child.writeSVG(canvas)
	}
}

// writeElement writes the opening tag and content of elements that svgo
// cannot express with fractional coordinates.
func (e *Element) writeElement(w io.Writer) {
	fmt.Fprintf(w, "<%s", e.Kind)
	for _, a := range e.svgAttrs() {
		fmt.Fprintf(w, " %s", a)
	}
	if e.empty() {
		io.WriteString(w, "/>\n")
		return
	}
	io.WriteString(w, ">")
	if e.Kind == ForeignObject {
		io.WriteString(w, e.Raw.String())
	} else {
		io.WriteString(w, html.EscapeString(e.Text))
	}
}

func (e *Element) closeElement(w io.Writer) {
	if e.empty() {
		return
	}
	fmt.Fprintf(w, "</%s>\n", e.Kind)
}

func (e *Element) empty() bool {
	return len(e.Children) == 0 && e.Text == "" && e.Raw.String() == ""
}

// WriteSVG writes the receiver, as it appears at the provided elapsed time,
// as an SVG document scaled to fit its container.
func (s *Scene) WriteSVG(w io.Writer, elapsed time.Duration) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(s.Width, s.Height,
		attr("viewBox", fmt.Sprintf("0 0 %d %d", s.Width, s.Height)),
		attr("preserveAspectRatio", "xMinYMin meet"),
	)
	if root := s.At(elapsed).Root; root != nil {
		root.writeSVG(canvas)
	}
	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("failed to write scene: %w", ew.err)
	}
	return nil
}
