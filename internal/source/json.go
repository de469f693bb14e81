package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dgallion1/fragdeck/internal/markup"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONParser loads an already parsed markup tree.
//
//	{"title": "Deck", "pages": [{"title": {"type": "text", "text": "Hi"},
//	  "children": [{"type": "tag", "tag": "f", "children": [...]}],
//	  "properties": [{"key": "class", "values": ["dark"]}]}]}
type JSONParser struct{}

// deckSchema holds the shape rules the evaluator relies on. The level
// maximum is markup.MaxListLevel.
const deckSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "properties": {"$ref": "#/$defs/properties"},
    "pages": {"type": "array", "items": {"$ref": "#/$defs/page"}}
  },
  "$defs": {
    "properties": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["key"],
        "properties": {
          "key": {"type": "string", "minLength": 1},
          "values": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "page": {
      "type": "object",
      "properties": {
        "title": {"oneOf": [{"type": "null"}, {"$ref": "#/$defs/node"}]},
        "children": {"type": ["array", "null"], "items": {"$ref": "#/$defs/node"}},
        "properties": {"$ref": "#/$defs/properties"}
      }
    },
    "node": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"enum": ["tag", "text", "line", "ul"]},
        "tag": {"type": "string"},
        "text": {"type": "string"},
        "multiline": {"type": "boolean"},
        "level": {"type": "integer", "minimum": 0, "maximum": 64},
        "children": {"type": ["array", "null"], "items": {"$ref": "#/$defs/node"}}
      },
      "if": {"properties": {"type": {"const": "text"}}},
      "then": {"properties": {"children": {"maxItems": 0}}}
    }
  }
}`

var compileDeckSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("deck.json", strings.NewReader(deckSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("deck.json")
})

func (p *JSONParser) Parse(r io.Reader, filename string) (*markup.Deck, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json deck: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode json deck: %w", err)
	}
	schema, err := compileDeckSchema()
	if err != nil {
		return nil, fmt.Errorf("compile deck schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid json deck: %s", schemaIssues(err))
	}

	var deck markup.Deck
	if err := json.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("decode json deck: %w", err)
	}
	if deck.Title == "" {
		deck.Title = baseTitle(filename)
	}
	return &deck, nil
}

// schemaIssues flattens a validation error into "location: message" leaves.
func schemaIssues(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	var parts []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			loc := node.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			parts = append(parts, loc+": "+node.Message)
			return
		}
		for _, c := range node.Causes {
			walk(c)
		}
	}
	walk(verr)
	return strings.Join(parts, "; ")
}
