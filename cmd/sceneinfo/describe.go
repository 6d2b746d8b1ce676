package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/benoitkugler/okscene/scene"
	"github.com/benoitkugler/okscene/scenedoc"
	"github.com/benoitkugler/okscene/sceneshape"
)

// describe prints one line per object, indented by depth:
// class, bounds, fill kind and outline.
func describe(w io.Writer, sc *scenedoc.Scene) {
	if sc.Background != nil {
		fmt.Fprintf(w, "  background: %s\n", paintKind(sc.Background))
	}
	sc.Walk(func(depth int, s sceneshape.Shape) {
		o := s.Base()
		box := sceneshape.BoundingBox(s)
		line := fmt.Sprintf("%s%s [%.1f %.1f %.1f %.1f] fill=%s",
			strings.Repeat("  ", depth+1), scene.ClassName(o.Type),
			box.MinX, box.MinY, box.MaxX, box.MaxY, paintKind(o.Fill))
		if o.ClipPath != nil {
			line += " clipped"
		}
		if outline := s.Outline(); len(outline) > 0 {
			line += " d=" + outline.ToSVGPath()
		}
		fmt.Fprintln(w, line)
	})
}

func paintKind(p scene.Paint) string {
	switch p := p.(type) {
	case nil:
		return "none"
	case scene.PlainColor:
		return p.String()
	case *scene.Gradient:
		if p.IsRadial() {
			return "radial-gradient"
		}
		return "linear-gradient"
	case *scene.Pattern:
		return "pattern"
	}
	return fmt.Sprintf("%T", p)
}
