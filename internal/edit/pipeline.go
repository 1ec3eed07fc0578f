// Package edit runs modeling operations against the geometry engine and commits their results
// to the document. An operation either commits completely or leaves the document as it was.
package edit

import (
	"errors"
	"fmt"
	"slices"

	"mycad/internal/document"
	"mycad/internal/geom"
	"mycad/internal/logger"
	"mycad/internal/render"
)

var (
	// ErrInput reports an operation that cannot run on the given input.
	ErrInput = errors.New("edit: invalid input")
	// ErrEngineFailure reports a null result or a fault from the geometry engine.
	ErrEngineFailure = errors.New("edit: geometry engine failure")
	// ErrNotBound reports that no document or geometry engine is attached yet.
	ErrNotBound = errors.New("edit: pipeline not bound")
)

// Completed describes a committed operation.
type Completed struct {
	Op string
	// Added holds the document indices of the new entries, valid right after the commit.
	Added   []int
	Removed int
}

// Pipeline applies boolean, transform, array and primitive operations.
type Pipeline struct {
	doc  *document.Document
	geo  geom.Engine
	log  *logger.Logger
	done []func(Completed)
}

// New returns a pipeline over doc and geo. Either may be nil until Bind.
func New(doc *document.Document, geo geom.Engine, log *logger.Logger) *Pipeline {
	return &Pipeline{doc: doc, geo: geo, log: log}
}

// Bind replaces the document and geometry engine.
func (p *Pipeline) Bind(doc *document.Document, geo geom.Engine) {
	p.doc, p.geo = doc, geo
}

// OnCompleted registers fn to run after every committed operation.
func (p *Pipeline) OnCompleted(fn func(Completed)) {
	p.done = append(p.done, fn)
}

func (p *Pipeline) complete(c Completed) {
	p.log.Infof("%s: added %d, removed %d", c.Op, len(c.Added), c.Removed)
	for _, fn := range p.done {
		fn(c)
	}
}

func (p *Pipeline) bound(op string) error {
	if p.doc == nil || p.geo == nil {
		p.log.Debugf("%s: pipeline not bound", op)
		return fmt.Errorf("%s: %w", op, ErrNotBound)
	}
	return nil
}

// call runs fn, turning a panic in the geometry engine into ErrEngineFailure.
func call[T any](op string, fn func() T) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: %v", op, ErrEngineFailure, r)
		}
	}()
	return fn(), nil
}

// Boolean folds op over shapes left to right. On success the entries displayed by handles are
// removed and the result is added under op's name, all in one document batch. It returns the
// index of the new entry.
func (p *Pipeline) Boolean(op geom.BooleanOp, shapes []geom.Shape, handles []render.Handle) (int, error) {
	name := op.String()
	if len(shapes) < 2 {
		return -1, fmt.Errorf("%s: %w: need at least 2 shapes, have %d", name, ErrInput, len(shapes))
	}
	if err := p.bound(name); err != nil {
		return -1, err
	}
	result := shapes[0]
	for i, s := range shapes[1:] {
		var err error
		result, err = call(name, func() geom.Shape { return p.geo.Boolean(op, result, s) })
		if err != nil {
			p.log.Errorf("%v", err)
			return -1, err
		}
		if result == nil {
			err = fmt.Errorf("%s: %w: operand %d produced an empty result", name, ErrEngineFailure, i+1)
			p.log.Errorf("%v", err)
			return -1, err
		}
	}

	order := RemovalOrder(p.doc, handles)
	idx := -1
	p.doc.Batch(func() {
		for _, i := range order {
			p.doc.RemoveAt(i)
		}
		idx, _ = p.doc.AddShape(result, name)
	})
	p.complete(Completed{Op: name, Added: []int{idx}, Removed: len(order)})
	return idx, nil
}

// RemovalOrder maps handles to document indices, dropping unknown and repeated handles, and
// sorts them descending so that removing them one by one never shifts a pending index.
func RemovalOrder(doc *document.Document, handles []render.Handle) []int {
	var out []int
	for _, h := range handles {
		if i, ok := doc.FindIndex(h); ok && !slices.Contains(out, i) {
			out = append(out, i)
		}
	}
	slices.SortFunc(out, func(a, b int) int { return b - a })
	return out
}

// Transform applies kind to each shape and adds every non-null result. The originals stay in
// the document. It fails only when no result could be added.
func (p *Pipeline) Transform(kind geom.TransformKind, shapes []geom.Shape, params geom.TransformParams) ([]int, error) {
	name := kind.ResultName()
	if len(shapes) == 0 {
		return nil, fmt.Errorf("%s: %w: no shapes selected", name, ErrInput)
	}
	if err := p.bound(name); err != nil {
		return nil, err
	}
	var results []geom.Shape
	for i, s := range shapes {
		out, err := call(name, func() geom.Shape { return p.geo.Transform(kind, s, params) })
		switch {
		case err != nil:
			p.log.Warnf("shape %d: %v", i, err)
		case out == nil:
			p.log.Warnf("%s: shape %d produced no result", name, i)
		default:
			results = append(results, out)
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%s: %w: no shape could be transformed", name, ErrEngineFailure)
	}
	added := p.addAll(results, name)
	p.complete(Completed{Op: name, Added: added})
	return added, nil
}

// ArrayItemName names every entry added by Array.
const ArrayItemName = "ArrayItem"

// Array adds params.Count transformed copies of shape. The source is never removed.
func (p *Pipeline) Array(kind geom.ArrayKind, shape geom.Shape, params geom.ArrayParams) ([]int, error) {
	const op = "array"
	switch {
	case shape == nil:
		return nil, fmt.Errorf("%s: %w: no shape selected", op, ErrInput)
	case params.Count <= 0:
		return nil, fmt.Errorf("%s: %w: count must be positive, got %d", op, ErrInput, params.Count)
	}
	if err := p.bound(op); err != nil {
		return nil, err
	}
	items, err := call(op, func() []geom.Shape { return p.geo.Array(kind, shape, params) })
	if err != nil {
		p.log.Errorf("%v", err)
		return nil, err
	}
	items = slices.DeleteFunc(items, func(s geom.Shape) bool { return s == nil })
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w: no copies produced", op, ErrEngineFailure)
	}
	added := p.addAll(items, ArrayItemName)
	p.complete(Completed{Op: op, Added: added})
	return added, nil
}

// Primitive makes a primitive solid and adds it under name, or a generated name when empty.
func (p *Pipeline) Primitive(kind geom.PrimitiveKind, params geom.PrimitiveParams, name string) (int, error) {
	op := kind.String()
	if err := p.bound(op); err != nil {
		return -1, err
	}
	s, err := call(op, func() geom.Shape { return p.geo.MakePrimitive(kind, params) })
	if err != nil {
		p.log.Errorf("%v", err)
		return -1, err
	}
	if s == nil {
		return -1, fmt.Errorf("%s: %w: invalid parameters %+v", op, ErrEngineFailure, params)
	}
	added := p.addAll([]geom.Shape{s}, name)
	p.complete(Completed{Op: op, Added: added})
	return added[0], nil
}

func (p *Pipeline) addAll(shapes []geom.Shape, name string) []int {
	added := make([]int, 0, len(shapes))
	p.doc.Batch(func() {
		for _, s := range shapes {
			if i, ok := p.doc.AddShape(s, name); ok {
				added = append(added, i)
			}
		}
	})
	return added
}
