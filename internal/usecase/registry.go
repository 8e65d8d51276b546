package usecase

import (
	"bytes"
	"context"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/inetops/fleetwatch/internal/domain"
)

// CompiledTemplate wraps one compiled per-vendor validation schema.
type CompiledTemplate struct {
	schema *jsonschema.Schema
}

// Validate checks a raw backup document against the template.
func (t *CompiledTemplate) Validate(raw []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return t.schema.Validate(inst)
}

// SchemaRegistry resolves a (device class, vendor) pair to an optional
// validation template. It is rebuilt from scratch on every sync pass, which
// bounds template staleness to one sync interval.
type SchemaRegistry struct {
	templates map[string]*CompiledTemplate
}

// BuildSchemaRegistry collects and compiles every template.json found in an
// already-fetched object listing. Templates that cannot be fetched or
// compiled are logged and skipped; one bad template never aborts the pass,
// but an expired context does.
func BuildSchemaRegistry(
	ctx context.Context,
	store domain.ObjectStore,
	root string,
	objects []domain.ObjectInfo,
	logger Logger,
) (*SchemaRegistry, error) {
	templates := make(map[string]*CompiledTemplate)

	for _, obj := range objects {
		parsed, err := ParseKey(root, obj.Key)
		if err != nil || parsed.Kind != KindTemplate {
			continue
		}

		raw, err := store.GetObject(ctx, obj.Key)
		if err != nil {
			if sourceUnavailable(ctx, err) {
				return nil, fmt.Errorf("fetch template %s: %w", obj.Key, err)
			}
			logger.Errorf("Failed to fetch template %s: %v", obj.Key, err)
			continue
		}

		tmpl, err := compileTemplate(raw)
		if err != nil {
			logger.Warnf("Skipping malformed template %s: %v", obj.Key, err)
			continue
		}

		templates[templateKey(parsed.DeviceClass, parsed.Vendor)] = tmpl
	}

	return &SchemaRegistry{templates: templates}, nil
}

func compileTemplate(raw []byte) (*CompiledTemplate, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("template.json", doc); err != nil {
		return nil, fmt.Errorf("add template resource: %w", err)
	}

	schema, err := compiler.Compile("template.json")
	if err != nil {
		return nil, fmt.Errorf("compile template: %w", err)
	}

	return &CompiledTemplate{schema: schema}, nil
}

// Resolve returns the template for a (device class, vendor) pair, or nil
// when none is registered.
func (r *SchemaRegistry) Resolve(deviceClass, vendor string) *CompiledTemplate {
	return r.templates[templateKey(deviceClass, vendor)]
}

// Len reports how many templates the registry holds.
func (r *SchemaRegistry) Len() int {
	return len(r.templates)
}

func templateKey(deviceClass, vendor string) string {
	return deviceClass + "/" + vendor
}
