package ai

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Placeholder is returned when no reply text can be located.
const Placeholder = "…"

// extractor locates reply text in a payload. ok is false when it found nothing.
type extractor func(payload gjson.Result) (text string, ok bool)

// extractors are tried in order; the first hit wins.
var extractors = []extractor{
	fromOutputText,
	fromOutputItems,
}

// ExtractText locates human-readable reply text in a text-generation payload.
// It never fails: unrecognized payloads yield Placeholder.
func ExtractText(payload gjson.Result) string {
	for _, extract := range extractors {
		if text, ok := extract(payload); ok {
			return text
		}
	}
	return Placeholder
}

func fromOutputText(payload gjson.Result) (string, bool) {
	return nonBlank(payload.Get("output_text"))
}

func fromOutputItems(payload gjson.Result) (string, bool) {
	output := payload.Get("output")
	if !output.IsArray() {
		return "", false
	}

	for _, item := range output.Array() {
		if text, ok := messageText(item, 1); ok {
			return text, true
		}
	}
	return "", false
}

// messageText reads the text of a message item. depth is the number of
// nested message wrappers still allowed.
func messageText(item gjson.Result, depth int) (string, bool) {
	if !item.IsObject() {
		return "", false
	}

	if item.Get("type").String() == "message" {
		if text, ok := contentText(item.Get("content"), depth); ok {
			return text, true
		}
	}

	if depth > 0 {
		if wrapped := item.Get("message"); wrapped.IsObject() {
			return contentText(wrapped.Get("content"), depth-1)
		}
	}
	return "", false
}

func contentText(content gjson.Result, depth int) (string, bool) {
	if content.Type == gjson.String {
		return nonBlank(content)
	}
	if !content.IsArray() {
		return "", false
	}

	for _, entry := range content.Array() {
		switch entry.Get("type").String() {
		case "output_text", "text":
			if text, ok := nonBlank(entry.Get("text")); ok {
				return text, true
			}
		case "message":
			if depth > 0 {
				if text, ok := contentText(entry.Get("content"), depth-1); ok {
					return text, true
				}
			}
		}
	}
	return "", false
}

func nonBlank(v gjson.Result) (string, bool) {
	if v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
		return "", false
	}
	return v.Str, true
}
