package definition

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/elementflow/internal/ctxlog"
)

// Decoder is the format-specific half of parsing. It extracts the raw value
// of the named collection from a document, using plain Go values:
// map[string]any for mappings, []any for lists.
type Decoder interface {
	Decode(ctx context.Context, src []byte, filename, collection string) (any, error)
}

// Parser loads definition documents and validates them.
type Parser struct {
	Collection string
	decoders   map[string]Decoder
}

// NewParser creates a parser reading the given top-level collection. An
// empty collection selects DefaultCollection.
func NewParser(collection string) *Parser {
	if collection == "" {
		collection = DefaultCollection
	}
	yamlDec := &yamlDecoder{}
	return &Parser{
		Collection: collection,
		decoders: map[string]Decoder{
			".hcl":  &hclDecoder{},
			".yml":  yamlDec,
			".yaml": yamlDec,
			".json": yamlDec,
		},
	}
}

// Parse reads the document at path and returns the validated definition.
// Every failure is a *DefinitionError.
func (p *Parser) Parse(ctx context.Context, path string) (Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing pipeline definition.", "path", path, "collection", p.Collection)

	def, err := p.parse(ctx, path)
	if err != nil {
		var defErr *DefinitionError
		if errors.As(err, &defErr) && defErr.Source == "" {
			defErr.Source = path
		}
		return nil, err
	}

	logger.Debug("Pipeline definition parsed.", "path", path, "elements", len(def))
	return def, nil
}

func (p *Parser) parse(ctx context.Context, path string) (Definition, error) {
	ext := strings.ToLower(filepath.Ext(path))
	dec, ok := p.decoders[ext]
	if !ok {
		return nil, documentError(fmt.Sprintf("unsupported document type %q", ext), nil)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, documentError("failed to read document", err)
	}

	raw, err := dec.Decode(ctx, src, path, p.Collection)
	if err != nil {
		return nil, err
	}

	return Validate(ctx, raw)
}
