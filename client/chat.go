package client

import "context"

// ChatService talks to the assistant endpoints.
type ChatService struct {
	c *Client
}

func NewChatService(c *Client) *ChatService {
	return &ChatService{c: c}
}

type completionRequest struct {
	Message     string       `json:"message"`
	ContextData *ContextData `json:"contextData,omitempty"`
}

type completionResponse struct {
	Reply string `json:"reply"`
}

// Completion asks a question without context.
func (s *ChatService) Completion(ctx context.Context, message string) (string, error) {
	var out completionResponse
	if err := s.c.post(ctx, "/ai/completion", completionRequest{Message: message}, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// ContextualCompletion asks a question with the given records attached.
func (s *ChatService) ContextualCompletion(ctx context.Context, message string, data ContextData) (string, error) {
	var out completionResponse
	body := completionRequest{Message: message, ContextData: &data}
	if err := s.c.post(ctx, "/ai/contextual-completion", body, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}
