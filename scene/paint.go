package scene

import "fmt"

// Paint is the content of a fill or a stroke:
// either a PlainColor, a *Gradient or a *Pattern.
type Paint interface {
	isPaint()
}

func (PlainColor) isPaint() {}
func (*Gradient) isPaint()  {}
func (*Pattern) isPaint()   {}

// ToPaint converts an enlivened fill or stroke value.
// A nil result means no painting : null, "" and "none" are accepted.
func ToPaint(v any) (Paint, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" || v == "none" {
			return nil, nil
		}
		return ParseColor(v)
	case Paint:
		return v, nil
	}
	return nil, fmt.Errorf("unsupported paint %T", v)
}
