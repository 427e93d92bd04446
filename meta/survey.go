package meta

import (
	"fmt"
	"reflect"
	"strings"
)

func panicf(format string, a ...any) {
	panic(fmt.Sprintf(format, a...))
}

func (s *Struct) setDBName(dbName string) {
	if dbName == "" || s.DBName == dbName {
		return
	}
	if s.DBName != "" {
		panicf("conflicting DB name settings for struct %v: %s vs. %s", s.Type, s.DBName, dbName)
	}
	s.DBName = dbName
}

// Survey produces a Struct describing a type
func Survey(t reflect.Type) Struct {
	s := surveyInternal(t)
	if s.DBName == "" {
		panicf("missing struct-level DB name setting in struct %v", s.Type)
	}
	if s.identity == noIdentity {
		panicf("missing identity field in struct %v", s)
	}
	return s
}

func surveyInternal(t reflect.Type) Struct {
	if t.Kind() != reflect.Struct {
		panicf("%v expected to be a struct type", t)
	}

	n := t.NumField()
	s := Struct{
		Type:     t,
		Fields:   make([]Field, 0, n),
		identity: noIdentity,
	}
	dbNames := map[string]int{} // holds indexes into s.Fields

loop:
	for i := 0; i < n; i++ {
		f := t.Field(i)
		options := parseTag(f.Tag)
		switch {
		case f.Type == metaType:
			for _, opt := range options {
				switch opt.key {
				case "name=":
					s.setDBName(opt.value)
				default:
					panicf("invalid struct-level option for %v: %s", t, opt)
				}
			}

		case f.Anonymous:
			for _, opt := range options {
				switch opt.key {
				case "-":
					if len(options) != 1 {
						panicf("option - for field %v.%s cannot be combined with other options", t, f.Name)
					}
					continue loop
				default:
					panicf("invalid option for %v.%s: %s", t, f.Name, opt)
				}
			}
			sub := surveyInternal(f.Type)
			s.setDBName(sub.DBName)
			if sub.identity != noIdentity {
				if s.identity != noIdentity {
					panicf("duplicate identity fields %v.%s and %v.%s",
						t, s.Fields[s.identity], t, sub.Fields[sub.identity])
				}
				s.identity = len(s.Fields) + sub.identity
			}
			for _, field := range sub.Fields {
				field.Index = append([]int{i}, field.Index...)
				if idx, ok := dbNames[field.DBName]; ok {
					panicf("duplicate attribute name %s for fields %v.%s and %v.%s",
						field.DBName, t, s.Fields[idx], t, field)
				}
				dbNames[field.DBName] = len(s.Fields)
				s.Fields = append(s.Fields, field)
			}

		default:
			field := Field{
				GoName: f.Name,
				Index:  f.Index,
				Type:   f.Type,
			}
			for _, opt := range options {
				switch opt.key {
				case "-":
					if len(options) != 1 {
						panicf("option - for field %v.%s cannot be combined with other options", t, field)
					}
					continue loop
				case "name=":
					// Attribute names become part of derived index table names
					// and of lookup criteria; dots and $ would make them
					// ambiguous there.
					if strings.Contains(opt.value, ".") {
						panicf("%v.%s: dots are not allowed in attribute names", t, field)
					}
					if strings.HasPrefix(opt.value, "$") {
						panicf("%v.%s: attribute name is not allowed to start with $", t, field)
					}
					field.DBName = opt.value
				case "identity":
					if s.identity != noIdentity {
						panicf("duplicate identity fields %v.%s and %v.%s",
							t, s.Fields[s.identity], t, field)
					}
					if f.Type.Kind() != reflect.String {
						panicf("identity field %v.%s must be string-based", t, field)
					}
					s.identity = len(s.Fields)
				default:
					panicf("invalid option for %v.%s: %s", t, field, opt)
				}
			}
			if !f.IsExported() {
				panicf("unexported field %v.%s must be skipped using a `karst:\"-\"` tag", t, field)
			}
			if field.DBName == "" {
				field.DBName = field.GoName
			}
			if idx, ok := dbNames[field.DBName]; ok {
				panicf("duplicate attribute name %s for fields %v.%s and %v.%s",
					field.DBName, t, s.Fields[idx], t, field)
			}
			dbNames[field.DBName] = len(s.Fields)
			s.Fields = append(s.Fields, field)
		}
	}

	return s
}
