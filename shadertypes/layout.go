package shadertypes

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrPadding   = errors.New("shadertypes: layout has implicit padding")
	ErrFieldType = errors.New("shadertypes: field is not a float32 vector")
)

// Scalar is the component type of a field.
type Scalar string

const (
	ScalarFloat   Scalar = "float"
	ScalarInvalid Scalar = ""
)

// Field is one member of a shared struct as the shader sees it.
type Field struct {
	Name       string `json:"name"`
	GoName     string `json:"go_name"`
	Offset     int    `json:"offset"`
	Size       int    `json:"size"`
	Components int    `json:"components"`
	Scalar     Scalar `json:"scalar"`
}

// Layout is the byte-level description of a shared struct.
type Layout struct {
	Name   string  `json:"name"`
	Size   int     `json:"size"`
	Align  int     `json:"align"`
	Fields []Field `json:"fields"`
}

// VertexLayout describes Vertex.
func VertexLayout() Layout { return Describe("Vertex", Vertex{}) }

// ForcingConstantLayout describes ForcingConstant.
func ForcingConstantLayout() Layout { return Describe("ForcingConstant", ForcingConstant{}) }

// Layouts returns every shared struct in declaration order.
func Layouts() []Layout {
	return []Layout{VertexLayout(), ForcingConstantLayout()}
}

// Describe reflects over a struct value. Shader names come from the
// `shader` tag and default to the Go field name.
func Describe(name string, v any) Layout {
	t := reflect.TypeOf(v)
	l := Layout{
		Name:  name,
		Size:  int(t.Size()),
		Align: t.Align(),
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		f := Field{
			Name:   sf.Tag.Get("shader"),
			GoName: sf.Name,
			Offset: int(sf.Offset),
			Size:   int(sf.Type.Size()),
		}
		if f.Name == "" {
			f.Name = sf.Name
		}
		f.Components, f.Scalar = vectorShape(sf.Type)
		l.Fields = append(l.Fields, f)
	}
	return l
}

// vectorShape recognises float32, [N]float32 and structs made only of
// float32 fields.
func vectorShape(t reflect.Type) (int, Scalar) {
	switch t.Kind() {
	case reflect.Float32:
		return 1, ScalarFloat
	case reflect.Array:
		if t.Elem().Kind() == reflect.Float32 {
			return t.Len(), ScalarFloat
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).Type.Kind() != reflect.Float32 {
				return 0, ScalarInvalid
			}
		}
		if t.NumField() > 0 {
			return t.NumField(), ScalarFloat
		}
	}
	return 0, ScalarInvalid
}

// Validate checks that every field is a float32 vector and that fields are
// densely packed: each starts where the previous one ends and the last one
// ends at Size. Adding a field of another width must keep this true.
func (l Layout) Validate() error {
	end := 0
	for _, f := range l.Fields {
		if f.Scalar != ScalarFloat || f.Size != f.Components*4 {
			return fmt.Errorf("%s.%s: %w", l.Name, f.GoName, ErrFieldType)
		}
		if f.Offset != end {
			return fmt.Errorf("%s.%s at offset %d, previous field ends at %d: %w", l.Name, f.GoName, f.Offset, end, ErrPadding)
		}
		end = f.Offset + f.Size
	}
	if end != l.Size {
		return fmt.Errorf("%s: fields end at %d, struct size %d: %w", l.Name, end, l.Size, ErrPadding)
	}
	return nil
}

// Field looks a member up by shader name.
func (l Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
