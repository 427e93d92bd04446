package meta

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSurveySimple(t *testing.T) {
	type FooID string
	type Foo struct {
		Meta         `karst:"name=foos"`
		ID           FooID `karst:"identity,name=id"`
		Field        int
		RenamedField int `karst:"name=something_else"`
		SkippedField int `karst:"-"`
	}
	require.Equal(t, Struct{
		DBName: "foos",
		Type:   reflect.TypeOf(Foo{}),
		Fields: []Field{
			{
				GoName: "ID",
				DBName: "id",
				Index:  []int{1},
				Type:   reflect.TypeOf(FooID("")),
			},
			{
				GoName: "Field",
				DBName: "Field",
				Index:  []int{2},
				Type:   reflect.TypeOf(0),
			},
			{
				GoName: "RenamedField",
				DBName: "something_else",
				Index:  []int{3},
				Type:   reflect.TypeOf(0),
			},
		},
		identity: 0,
	}, Survey(reflect.TypeOf(Foo{})))
}

func TestSurveyEmbedded(t *testing.T) {
	type FooBarID string
	type Foo struct {
		FooField int `karst:"name=foo_field"`
	}
	type Bar struct {
		BarField int `karst:"name=bar_field"`
	}
	type Skipped struct {
		SkippedField int
	}
	type foobar struct {
		Meta    `karst:"name=foo_bars"`
		ID      FooBarID `karst:"identity,name=id"`
		Foo
		Bar
		Skipped `karst:"-"`
	}
	require.Equal(t, Struct{
		DBName: "foo_bars",
		Type:   reflect.TypeOf(foobar{}),
		Fields: []Field{
			{
				GoName: "ID",
				DBName: "id",
				Index:  []int{1},
				Type:   reflect.TypeOf(FooBarID("")),
			},
			{
				GoName: "FooField",
				DBName: "foo_field",
				Index:  []int{2, 0},
				Type:   reflect.TypeOf(0),
			},
			{
				GoName: "BarField",
				DBName: "bar_field",
				Index:  []int{3, 0},
				Type:   reflect.TypeOf(0),
			},
		},
		identity: 0,
	}, Survey(reflect.TypeOf(foobar{})))
}

func TestSurveyNestedIdentity(t *testing.T) {
	type FooID string
	type Foo struct {
		Meta `karst:"name=foos"`
		ID   FooID `karst:"identity"`
	}
	type Bar struct {
		Field int
	}
	type foobar struct {
		Bar
		Foo
	}
	s := Survey(reflect.TypeOf(foobar{}))
	require.Equal(t, "foos", s.DBName)
	require.Equal(t, "ID", s.Identity().GoName)
	require.Equal(t, []int{1, 1}, s.Identity().Index)
}

func TestSurveyInvalidType(t *testing.T) {
	require.PanicsWithValue(t, "int expected to be a struct type",
		func() { Survey(reflect.TypeOf(0)) })
}

func TestSurveyInvalidMetaOption(t *testing.T) {
	type Foo struct {
		Meta `karst:"invalid"`
	}
	require.PanicsWithValue(t, "invalid struct-level option for meta.Foo: invalid",
		func() { Survey(reflect.TypeOf(Foo{})) })
}

func TestSurveyInvalidFieldOption(t *testing.T) {
	type Foo struct {
		Field string `karst:"invalid"`
	}
	require.PanicsWithValue(t, "invalid option for meta.Foo.Field: invalid",
		func() { Survey(reflect.TypeOf(Foo{})) })
}

func TestSurveyIncompatibleOptions(t *testing.T) {
	type Foo struct {
		Field string `karst:"-,invalid"`
	}
	require.PanicsWithValue(t, "option - for field meta.Foo.Field cannot be combined with other options",
		func() { Survey(reflect.TypeOf(Foo{})) })
}

func TestSurveyAttrNameConflict(t *testing.T) {
	type Foo struct {
		Field1 string `karst:"name=foo"`
		Field2 string `karst:"name=foo"`
	}
	require.PanicsWithValue(t, "duplicate attribute name foo for fields meta.Foo.Field1 (foo) and meta.Foo.Field2 (foo)",
		func() { Survey(reflect.TypeOf(Foo{})) })
}

func TestSurveyMissingName(t *testing.T) {
	type Foo struct {
		ID string `karst:"identity"`
	}
	require.PanicsWithValue(t, "missing struct-level DB name setting in struct meta.Foo",
		func() { Survey(reflect.TypeOf(Foo{})) })
}

func TestSurveyMissingIdentity(t *testing.T) {
	type Foo struct {
		Meta `karst:"name=foos"`
		ID   string
	}
	require.PanicsWithValue(t, "missing identity field in struct meta.Foo (foos)",
		func() { Survey(reflect.TypeOf(Foo{})) })
}

func TestSurveyDuplicateIdentity(t *testing.T) {
	type Foo struct {
		Meta `karst:"name=foos"`
		ID1  string `karst:"identity"`
		ID2  string `karst:"identity"`
	}
	require.PanicsWithValue(t, "duplicate identity fields meta.Foo.ID1 and meta.Foo.ID2",
		func() { Survey(reflect.TypeOf(Foo{})) })
}

func TestSurveyNonStringIdentity(t *testing.T) {
	type Foo struct {
		Meta `karst:"name=foos"`
		ID   int `karst:"identity"`
	}
	require.PanicsWithValue(t, "identity field meta.Foo.ID must be string-based",
		func() { Survey(reflect.TypeOf(Foo{})) })
}

func TestSurveyUnexportedField(t *testing.T) {
	type Foo struct {
		Meta  `karst:"name=foos"`
		ID    string `karst:"identity"`
		other int
	}
	require.PanicsWithValue(t, "unexported field meta.Foo.other must be skipped using a `karst:\"-\"` tag",
		func() { Survey(reflect.TypeOf(Foo{})) })
}

func TestSurveyDotInName(t *testing.T) {
	type Foo struct {
		Meta  `karst:"name=foos"`
		ID    string `karst:"identity"`
		Field int    `karst:"name=a.b"`
	}
	require.PanicsWithValue(t, "meta.Foo.Field: dots are not allowed in attribute names",
		func() { Survey(reflect.TypeOf(Foo{})) })
}
