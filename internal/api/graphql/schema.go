package graphql

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	apierrors "github.com/feral-file/ff-collection-indexer/internal/api/shared/errors"
)

//go:embed schema.graphql
var schemaSDL string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSDL})

// executableSchema serves the schema by resolving root fields through the Resolver and
// rendering the shared DTOs against the requested selection sets
type executableSchema struct {
	resolver *Resolver
}

// NewExecutableSchema creates a gqlgen ExecutableSchema over the resolver
func NewExecutableSchema(resolver *Resolver) graphql.ExecutableSchema {
	return &executableSchema{resolver: resolver}
}

func (e *executableSchema) Schema() *ast.Schema {
	return parsedSchema
}

func (e *executableSchema) Complexity(ctx context.Context, typeName, field string, childComplexity int, rawArgs map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)

	var root string
	switch opCtx.Operation.Operation {
	case ast.Query:
		root = "Query"
	case ast.Mutation:
		root = "Mutation"
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, field := range graphql.CollectFields(opCtx, opCtx.Operation.SelectionSet, []string{root}) {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(field.Alias))
			buf.WriteByte(':')
			e.rootField(ctx, opCtx, root, field, &buf)
		}
		buf.WriteByte('}')

		return &graphql.Response{Data: buf.Bytes()}
	}
}

// rootField resolves one root field, writing null and recording the error on failure
func (e *executableSchema) rootField(
	ctx context.Context,
	opCtx *graphql.OperationContext,
	root string,
	field graphql.CollectedField,
	buf *bytes.Buffer,
) {
	if field.Name == "__typename" {
		buf.WriteString(strconv.Quote(root))
		return
	}

	args := field.ArgumentMap(opCtx.Variables)
	fc := &graphql.FieldContext{
		Object:     root,
		Field:      field,
		Args:       args,
		IsMethod:   true,
		IsResolver: true,
	}
	ctx = graphql.WithFieldContext(ctx, fc)

	var out bytes.Buffer
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = graphql.Recover(ctx, r)
			}
		}()

		if field.Name == "__schema" || field.Name == "__type" {
			return apierrors.NewBadRequestError("introspection is not supported")
		}

		result, err := e.resolver.resolve(ctx, root, field.Name, args)
		if err != nil {
			return err
		}
		fc.Result = result

		value, err := toGeneric(result)
		if err != nil {
			return err
		}
		return e.writeValue(opCtx, &out, field.Definition.Type, value, field.Selections)
	}()
	if err != nil {
		graphql.AddError(ctx, err)
		buf.WriteString("null")
		return
	}
	buf.Write(out.Bytes())
}

// toGeneric turns a DTO into decoded JSON; numbers stay json.Number so Uint64 keeps its precision
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return out, nil
}

// writeValue renders a decoded value as the schema type, keeping only the selected fields
// in selection order and under their aliases
func (e *executableSchema) writeValue(
	opCtx *graphql.OperationContext,
	buf *bytes.Buffer,
	typ *ast.Type,
	value any,
	selections ast.SelectionSet,
) error {
	if value == nil {
		buf.WriteString("null")
		return nil
	}

	if typ.Elem != nil {
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("expected a list for %s, got %T", typ.String(), value)
		}
		buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeValue(opCtx, buf, typ.Elem, item, selections); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	def := parsedSchema.Types[typ.Name()]
	if def == nil {
		return fmt.Errorf("unknown type %s", typ.Name())
	}

	switch def.Kind {
	case ast.Object:
		obj, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("expected an object for %s, got %T", def.Name, value)
		}
		buf.WriteByte('{')
		for i, field := range graphql.CollectFields(opCtx, selections, []string{def.Name}) {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(field.Alias))
			buf.WriteByte(':')
			if field.Name == "__typename" {
				buf.WriteString(strconv.Quote(def.Name))
				continue
			}
			if err := e.writeValue(opCtx, buf, field.Definition.Type, obj[field.Name], field.Selections); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case ast.Scalar:
		return writeScalar(buf, def.Name, value)

	case ast.Enum:
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", def.Name, err)
		}
		buf.Write(raw)
		return nil
	}

	return fmt.Errorf("unsupported output type %s", def.Name)
}

func writeScalar(buf *bytes.Buffer, name string, value any) error {
	switch name {
	case "Uint64":
		n, ok := value.(json.Number)
		if !ok {
			return fmt.Errorf("expected a number for Uint64, got %T", value)
		}
		u, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse %q as uint64: %w", n, err)
		}
		Uint64(u).MarshalGQL(buf)
		return nil

	case "JSON":
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		JSON(raw).MarshalGQL(buf)
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	buf.Write(raw)
	return nil
}
