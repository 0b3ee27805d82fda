package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/tidwall/gjson"
)

// Tool is a tool descriptor attached to a text-generation request. Resources
// are bound inline, e.g. {"type":"file_search","vector_store_ids":["vs_1"]}.
type Tool struct {
	Type           string   `json:"type"`
	VectorStoreIDs []string `json:"vector_store_ids,omitempty"`
}

const (
	ToolFileSearch = "file_search"
	ToolWebSearch  = "web_search_preview"
)

// FileSearchTool returns a knowledge-retrieval tool bound to one vector store.
func FileSearchTool(vectorStoreID string) Tool {
	return Tool{Type: ToolFileSearch, VectorStoreIDs: []string{vectorStoreID}}
}

// WebSearchTool returns the general web-retrieval tool.
func WebSearchTool() Tool {
	return Tool{Type: ToolWebSearch}
}

// Request is the outbound payload for one generation call.
type Request struct {
	Model    string
	Messages []*schema.Message
	Tools    []Tool
}

// Reply is a well-formed upstream payload.
type Reply struct {
	Payload gjson.Result
}

// NewReply parses raw into a Reply. Payloads that are not well-formed JSON
// are reported as an UpstreamError.
func NewReply(raw []byte, status int) (*Reply, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &UpstreamError{
			StatusCode: status,
			Details:    string(raw),
			Err:        fmt.Errorf("upstream payload is not valid JSON"),
		}
	}
	return &Reply{Payload: gjson.ParseBytes(raw)}, nil
}

// ID returns the upstream response identifier, if any.
func (r *Reply) ID() string {
	return r.Payload.Get("id").String()
}

// Text returns the extracted reply text or the placeholder.
func (r *Reply) Text() string {
	return ExtractText(r.Payload)
}

// Generator performs one blocking text-generation call.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Reply, error)
}

// UpstreamError reports a failed call to the text-generation service.
// StatusCode is zero when no HTTP status was received.
type UpstreamError struct {
	StatusCode int
	Details    any
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream request failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// DecodeDetails returns the parsed JSON value of raw, or raw itself when it is
// not JSON.
func DecodeDetails(raw string) any {
	if raw == "" {
		return nil
	}
	if gjson.Valid(raw) {
		return gjson.Parse(raw).Value()
	}
	return raw
}
