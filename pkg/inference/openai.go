package inference

import (
	"context"

	"github.com/pkg/errors"
	go_openai "github.com/sashabaranov/go-openai"

	"github.com/go-go-golems/mangiafuoco/pkg/conversation"
)

// ClientSettings configures the OpenAI client shared by the chat engine
// and the scorer.
type ClientSettings struct {
	APIKey  string
	BaseURL string
}

func NewClient(settings ClientSettings) (*go_openai.Client, error) {
	if settings.APIKey == "" {
		return nil, errors.New("no API key")
	}
	config := go_openai.DefaultConfig(settings.APIKey)
	if settings.BaseURL != "" {
		config.BaseURL = settings.BaseURL
	}
	return go_openai.NewClientWithConfig(config), nil
}

func toOpenAIMessages(messages conversation.Conversation) []go_openai.ChatCompletionMessage {
	ret := make([]go_openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		ret = append(ret, go_openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Text,
		})
	}
	return ret
}

// OpenAIEngine implements Engine on top of the chat completions streaming
// API.
type OpenAIEngine struct {
	client *go_openai.Client
	model  string
}

func NewOpenAIEngine(client *go_openai.Client, model string) *OpenAIEngine {
	return &OpenAIEngine{
		client: client,
		model:  model,
	}
}

var _ Engine = (*OpenAIEngine)(nil)

func (e *OpenAIEngine) Model() string {
	return e.model
}

func (e *OpenAIEngine) StreamChat(ctx context.Context, messages conversation.Conversation) (ChatStream, error) {
	req := go_openai.ChatCompletionRequest{
		Model:    e.model,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	}

	stream, err := e.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat completion stream")
	}

	return &openAIStream{stream: stream}, nil
}

type openAIStream struct {
	stream *go_openai.ChatCompletionStream
}

var _ ChatStream = (*openAIStream)(nil)

func (s *openAIStream) Recv() (StreamChunk, error) {
	response, err := s.stream.Recv()
	if err != nil {
		return StreamChunk{}, err
	}

	if len(response.Choices) == 0 {
		// control frame without payload
		return StreamChunk{}, nil
	}

	delta := response.Choices[0].Delta
	return StreamChunk{
		Role:  delta.Role,
		Delta: delta.Content,
	}, nil
}

func (s *openAIStream) Close() error {
	s.stream.Close()
	return nil
}

// OpenAIScorer implements Scorer with a single non-streaming chat
// completion call.
type OpenAIScorer struct {
	client *go_openai.Client
	model  string
}

func NewOpenAIScorer(client *go_openai.Client, model string) *OpenAIScorer {
	return &OpenAIScorer{
		client: client,
		model:  model,
	}
}

var _ Scorer = (*OpenAIScorer)(nil)

func (s *OpenAIScorer) Score(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, go_openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []go_openai.ChatCompletionMessage{
			{
				Role:    go_openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    go_openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
