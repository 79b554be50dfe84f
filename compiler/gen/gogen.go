package gen

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/jvdsande/harmony/schema/property"
)

// GenerateGo renders one Go struct per model output type, nested objects
// included, in a package named pkg. External models are skipped. Fields are
// pointers unless required; reversed references are not stored and are
// left out.
func GenerateGo(g *Graph, pkg string) ([]byte, error) {
	if pkg == "" {
		return nil, NewConfigError("Package", nil, "package cannot be empty")
	}
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by harmony. DO NOT EDIT.")
	for _, m := range g.Models {
		if m.External {
			continue
		}
		f.Commentf("%s is a %s document.", m.TypeName(), m.Name)
		writeStruct(f, m.TypeName(), m.Schemas.Main)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, NewGenerationError("render", "", "", err)
	}
	out, err := imports.Process(pkg+".go", buf.Bytes(), nil)
	if err != nil {
		return nil, NewGenerationError("format", pkg+".go", "", err)
	}
	return out, nil
}

// WriteGo writes the output of GenerateGo to dir/models.go.
func WriteGo(g *Graph, dir, pkg string) error {
	src, err := GenerateGo(g, pkg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewGenerationError("write", dir, "create output directory", err)
	}
	path := filepath.Join(dir, "models.go")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return NewGenerationError("write", path, "", err)
	}
	return nil
}

// writeStruct emits the struct of a schema node, then the structs of its
// nested objects.
func writeStruct(f *jen.File, name string, p *property.Property) {
	var (
		fields []jen.Code
		nested []*property.Property
	)
	for _, child := range p.OutputFields() {
		if child.Type() == property.TypeReversedReference {
			continue
		}
		typ, obj := goType(child)
		if obj != nil {
			nested = append(nested, obj)
		}
		fields = append(fields, jen.Id(goName(child.Name())).Add(typ).Tag(map[string]string{
			"json": child.Name() + ",omitempty",
		}))
	}
	f.Type().Id(name).Struct(fields...)
	for _, obj := range nested {
		writeStruct(f, obj.GraphQLName(), obj)
	}
}

// goType returns the Go type of p and the schema node needing its own
// struct, if any. Optional fields are pointers; array elements never are.
func goType(p *property.Property) (*jen.Statement, *property.Property) {
	t, obj := goBase(p)
	if !p.IsRequired() && p.Type() != property.TypeArray && p.Type() != property.TypeJSON {
		t = jen.Op("*").Add(t)
	}
	return t, obj
}

func goBase(p *property.Property) (*jen.Statement, *property.Property) {
	switch p.Type() {
	case property.TypeString, property.TypeID, property.TypeReference:
		return jen.String(), nil
	case property.TypeNumber, property.TypeFloat:
		return jen.Float64(), nil
	case property.TypeBoolean:
		return jen.Bool(), nil
	case property.TypeDate:
		return jen.Qual("time", "Time"), nil
	case property.TypeSchema:
		return jen.Id(p.GraphQLName()), p
	case property.TypeArray:
		elem, obj := goBase(p.Elem())
		return jen.Index().Add(elem), obj
	default:
		return jen.Id("any"), nil
	}
}

func goName(name string) string {
	if name == "_id" {
		return "ID"
	}
	return property.Pascal(name)
}
