package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaTag            = "tag"
	schemaCategory       = "category"
	schemaArticle        = "article"
	schemaAccountCreate  = "account_create"
	schemaAccountUpdate  = "account_update"
	schemaChangePassword = "change_password"
)

type requestSchemas struct {
	byName map[string]*santhosh.Schema
}

func loadRequestSchemas() (*requestSchemas, error) {
	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("read request schemas: %w", err)
	}

	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	compiler.AssertFormat = true

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read request schema %s: %w", entry.Name(), err)
		}
		if err := compiler.AddResource(entry.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add request schema %s: %w", entry.Name(), err)
		}
		names = append(names, entry.Name())
	}

	out := &requestSchemas{byName: make(map[string]*santhosh.Schema, len(names))}
	for _, name := range names {
		compiled, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile request schema %s: %w", name, err)
		}
		out.byName[strings.TrimSuffix(name, ".json")] = compiled
	}
	return out, nil
}

// validate returns a ValidationError with rule invalid_request when body is
// not JSON or does not satisfy the schema.
func (s *requestSchemas) validate(name string, body []byte) error {
	sch, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("unknown request schema %q", name)
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return errInvalidBody
	}
	if err := sch.Validate(v); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			return domain.NewValidationError(domain.RuleInvalidRequest, strings.Join(collectValidationErrors(ve), "; "))
		}
		return domain.NewValidationError(domain.RuleInvalidRequest, err.Error())
	}
	return nil
}

func collectValidationErrors(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectValidationErrors(cause)...)
	}
	if len(ve.Causes) == 0 {
		msg := ve.Message
		if ve.InstanceLocation != "" {
			msg = ve.InstanceLocation + ": " + msg
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
