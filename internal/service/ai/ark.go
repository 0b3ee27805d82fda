package ai

import (
	"context"
	"net/http"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tidwall/sjson"

	"github.com/zhouzirui/ai-joe/backend/internal/logging"
)

// chatModel is the part of model.ChatModel the Ark generator needs.
type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ArkGenerator runs generation through an eino chat model (Volcengine Ark).
// Its reply is normalized into a Responses-shaped payload so extraction and
// debug reporting work the same for every backend.
type ArkGenerator struct {
	model     chatModel
	modelName string
}

// NewArkGenerator wraps a chat model.
func NewArkGenerator(cm chatModel, modelName string) *ArkGenerator {
	return &ArkGenerator{model: cm, modelName: modelName}
}

// Generate calls the chat model. Tool descriptors are not supported by Ark and
// are dropped.
func (g *ArkGenerator) Generate(ctx context.Context, req *Request) (*Reply, error) {
	if len(req.Tools) > 0 {
		logging.From(ctx).Debug("ark backend ignores tool descriptors", "tools", len(req.Tools))
	}

	msg, err := g.model.Generate(ctx, req.Messages)
	if err != nil {
		return nil, &UpstreamError{Details: err.Error(), Err: err}
	}

	payload, err := normalizeArkReply(msg, g.modelName)
	if err != nil {
		return nil, &UpstreamError{Details: err.Error(), Err: err}
	}
	return NewReply(payload, http.StatusOK)
}

func normalizeArkReply(msg *schema.Message, modelName string) ([]byte, error) {
	payload := []byte(`{"object":"response"}`)

	var err error
	if payload, err = sjson.SetBytes(payload, "model", modelName); err != nil {
		return nil, err
	}
	if msg == nil {
		return payload, nil
	}
	if payload, err = sjson.SetBytes(payload, "output_text", msg.Content); err != nil {
		return nil, err
	}
	if msg.ResponseMeta != nil && msg.ResponseMeta.FinishReason != "" {
		if payload, err = sjson.SetBytes(payload, "finish_reason", msg.ResponseMeta.FinishReason); err != nil {
			return nil, err
		}
	}
	return payload, nil
}
