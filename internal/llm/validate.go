package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds compiled schemas keyed by Schema.Name.
var compiledSchemas sync.Map // map[string]*jsonschema.Schema

// structuredContent checks a reply requested under schema and returns the
// JSON to keep. Markdown fences around the object are dropped. A reply cut
// off by the token limit is an *ErrTruncated; anything else that is not
// valid JSON matching schema is an *ErrInvalidResponse. A nil schema
// returns content unchanged.
func structuredContent(schema *Schema, content json.RawMessage, stopReason string) (json.RawMessage, error) {
	if schema == nil {
		return content, nil
	}

	body := stripFence(content)
	if stopReason == "max_tokens" {
		return nil, &ErrTruncated{Content: body}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ErrInvalidResponse{Content: content, Err: fmt.Errorf("empty reply for schema %q", schema.Name)}
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ErrInvalidResponse{Content: content, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return nil, &ErrInvalidResponse{Content: content, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}
	if err := compiled.Validate(doc); err != nil {
		return nil, &ErrInvalidResponse{Content: content, Err: fmt.Errorf("schema %q: %w", schema.Name, err)}
	}
	return body, nil
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(content json.RawMessage) json.RawMessage {
	b := bytes.TrimSpace(content)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = b[3:]
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants decoded JSON, not Go maps with typed slices.
	raw, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := "schema://" + schema.Name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	compiledSchemas.Store(schema.Name, compiled)
	return compiled, nil
}
