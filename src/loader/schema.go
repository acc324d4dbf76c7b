package loader

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed fragment.schema.json
var fragmentSchema string

const fragmentSchemaURL = "https://lintconf.dev/schema/fragment.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(fragmentSchemaURL, strings.NewReader(fragmentSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(fragmentSchemaURL)
	})
	return compiledSchema, schemaErr
}

// SchemaError lists every schema violation of one document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "schema: " + strings.Join(e.Problems, "; ")
}

// ValidateDocument checks a decoded document against the fragment schema.
// The document is passed through encoding/json first so that decoder
// specific types (int64, time values, ordered TOML tables) reach the
// validator as plain JSON values.
func ValidateDocument(doc map[string]any) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile fragment schema: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document is not JSON-compatible: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("document is not JSON-compatible: %w", err)
	}

	if err := s.Validate(v); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		var problems []string
		collectSchemaErrors(ve, &problems)
		if len(problems) == 0 {
			problems = append(problems, ve.Message)
		}
		return &SchemaError{Problems: problems}
	}
	return nil
}

func collectSchemaErrors(err *jsonschema.ValidationError, problems *[]string) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*problems = append(*problems, fmt.Sprintf("%s: %s", jsonPointerToPath(err.InstanceLocation), err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, problems)
	}
}

// jsonPointerToPath turns "/overrides/0/files" into "overrides[0].files".
func jsonPointerToPath(ptr string) string {
	if ptr == "" || ptr == "/" {
		return "(root)"
	}
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
