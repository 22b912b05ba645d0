// Package openapi exports the dispatch table as an OpenAPI 3 document, so
// the public surface of an application can be inspected, diffed, and fed to
// client generators.
package openapi

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/dispatch"
	"github.com/getkin/kin-openapi/openapi3"
)

// Export builds an OpenAPI document for every public action in the table.
// Captures and fixed positional arguments become path parameters; actions
// with variable arguments are exported at their mount path with the
// trailing-segment behavior noted in the description.
func Export(title, version string, rows []dispatch.TableRow) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, row := range rows {
		item := &openapi3.PathItem{Get: operationFor(row)}
		doc.Paths.Set(pathTemplate(row), item)
	}
	return doc
}

func operationFor(row dispatch.TableRow) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = operationID(row.Reverse)
	op.Summary = row.Doc
	if row.Namespace != "" {
		op.Tags = []string{row.Namespace}
	}

	description := ""
	if row.Args == dispatch.VariableArgs {
		description = "Accepts any number of trailing path segments."
	}
	op.Responses = openapi3.NewResponses(openapi3.WithStatus(200, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Successful dispatch"),
	}))

	for i := 1; i <= row.Captures; i++ {
		op.AddParameter(openapi3.NewPathParameter(fmt.Sprintf("capture%d", i)).
			WithSchema(openapi3.NewStringSchema()))
	}
	if row.Args > 0 {
		for i := 1; i <= row.Args; i++ {
			op.AddParameter(openapi3.NewPathParameter(fmt.Sprintf("arg%d", i)).
				WithSchema(openapi3.NewStringSchema()))
		}
	}
	if description != "" {
		op.Description = description
	}
	return op
}

func pathTemplate(row dispatch.TableRow) string {
	var sb strings.Builder
	sb.WriteString(row.Path)
	for i := 1; i <= row.Captures; i++ {
		fmt.Fprintf(&sb, "/{capture%d}", i)
	}
	if row.Args > 0 {
		for i := 1; i <= row.Args; i++ {
			fmt.Fprintf(&sb, "/{arg%d}", i)
		}
	}
	return sb.String()
}

// operationID turns a private path into a generator-friendly identifier.
func operationID(reverse string) string {
	return strings.ReplaceAll(reverse, "/", "_")
}
