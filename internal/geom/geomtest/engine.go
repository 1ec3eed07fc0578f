// Package geomtest provides a scriptable geom.Engine for tests.
package geomtest

import (
	"fmt"
	"strings"

	"mycad/internal/geom"
)

// Token is the shape type produced by Engine: a readable description of how it was built.
type Token string

// Engine builds Tokens. Each hook, when set, replaces the default behavior for that call.
type Engine struct {
	BooleanFunc   func(op geom.BooleanOp, a, b geom.Shape) geom.Shape
	TransformFunc func(kind geom.TransformKind, s geom.Shape, p geom.TransformParams) geom.Shape

	Calls []string
}

var _ geom.Engine = (*Engine)(nil)

func (e *Engine) MakePrimitive(kind geom.PrimitiveKind, p geom.PrimitiveParams) geom.Shape {
	e.Calls = append(e.Calls, "primitive "+kind.String())
	return Token(kind.String())
}

func (e *Engine) Boolean(op geom.BooleanOp, a, b geom.Shape) geom.Shape {
	e.Calls = append(e.Calls, "boolean "+op.String())
	if e.BooleanFunc != nil {
		return e.BooleanFunc(op, a, b)
	}
	if a == nil || b == nil {
		return nil
	}
	return Token(fmt.Sprintf("%s(%v,%v)", strings.ToLower(op.String()), a, b))
}

func (e *Engine) Transform(kind geom.TransformKind, s geom.Shape, p geom.TransformParams) geom.Shape {
	e.Calls = append(e.Calls, "transform "+kind.ResultName())
	if e.TransformFunc != nil {
		return e.TransformFunc(kind, s, p)
	}
	if s == nil {
		return nil
	}
	return Token(fmt.Sprintf("%s(%v)", strings.ToLower(kind.ResultName()), s))
}

func (e *Engine) Array(kind geom.ArrayKind, s geom.Shape, p geom.ArrayParams) []geom.Shape {
	e.Calls = append(e.Calls, "array")
	if s == nil || p.Count <= 0 {
		return nil
	}
	out := make([]geom.Shape, p.Count)
	for i := range out {
		out[i] = Token(fmt.Sprintf("item%d(%v)", i, s))
	}
	return out
}

func (e *Engine) Properties(s geom.Shape) (geom.Properties, bool) {
	if s == nil {
		return geom.Properties{}, false
	}
	return geom.Properties{Type: "Token", Bounds: geom.EmptyBox()}, true
}
