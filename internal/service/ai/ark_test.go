package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	input []*schema.Message
	reply *schema.Message
	err   error
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	return f.reply, f.err
}

func TestArkGeneratorNormalizesReply(t *testing.T) {
	cm := &fakeChatModel{reply: &schema.Message{
		Role:         schema.Assistant,
		Content:      "from ark",
		ResponseMeta: &schema.ResponseMeta{FinishReason: "stop"},
	}}
	gen := NewArkGenerator(cm, "doubao-pro")

	reply, err := gen.Generate(context.Background(), &Request{
		Messages: []*schema.Message{schema.UserMessage("hi")},
		Tools:    []Tool{WebSearchTool()},
	})
	require.NoError(t, err)

	assert.Len(t, cm.input, 1)
	assert.Equal(t, "from ark", reply.Text())
	assert.Equal(t, "doubao-pro", reply.Payload.Get("model").String())
	assert.Equal(t, "stop", reply.Payload.Get("finish_reason").String())
}

func TestArkGeneratorEmptyContentFallsBack(t *testing.T) {
	gen := NewArkGenerator(&fakeChatModel{reply: &schema.Message{Role: schema.Assistant}}, "m")

	reply, err := gen.Generate(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, Placeholder, reply.Text())
}

func TestArkGeneratorFailure(t *testing.T) {
	gen := NewArkGenerator(&fakeChatModel{err: errors.New("quota exceeded")}, "m")

	_, err := gen.Generate(context.Background(), &Request{})

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 0, upstreamErr.StatusCode)
	assert.Equal(t, "quota exceeded", upstreamErr.Details)
}
