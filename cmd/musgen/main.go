package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	typeops "github.com/mus-format/musgen-go/options/type"
	"github.com/poiesic/findit/core"
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Regenerates core/records_mus.gen.go. Field options are positional, so
// the WithField calls below must track the struct declarations in
// core/models.go field for field.
func main() {
	// go:generate runs this from inside core/; the output path assumes
	// the module root.
	if cwd, err := os.Getwd(); err == nil && strings.HasSuffix(cwd, "core") {
		must(os.Chdir(".."))
	}

	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/findit/core"),
	)
	must(err)

	g.AddDefinedType(reflect.TypeFor[core.ID]())

	// Timestamps travel as Unix micros.
	micros := typeops.WithTimeUnit(typeops.Micro)

	must(g.AddStruct(reflect.TypeFor[core.AuditRecord](),
		structops.WithField(), // Id
		structops.WithField(), // Project
		structops.WithField(), // Year
		structops.WithField(), // Department
		structops.WithField(), // RiskArea
		structops.WithField(), // Description
		structops.WithField(), // Code
		structops.WithField(), // Nilai
		structops.WithField(), // Subholding
		structops.WithField(), // Vector
		structops.WithField(micros), // InsertedAt
		structops.WithField(micros), // UpdatedAt
		structops.WithField())) // Metadata

	must(g.AddStruct(reflect.TypeFor[core.Checkpoint](),
		structops.WithField(), // ProcessorType
		structops.WithField(), // LastId
		structops.WithField(micros))) // UpdatedAt

	bs, err := g.Generate()
	must(err)

	must(os.WriteFile("./core/records_mus.gen.go", bs, 0o644))
}
