package gateway

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Response is the decoded body of a chat completion call. A gateway may answer
// 2xx and still carry an error object, either at the top level or per choice.
type Response struct {
	ID      string    `json:"id,omitempty"`
	Model   string    `json:"model,omitempty"`
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice is one completion candidate.
type Choice struct {
	Index        int                          `json:"index"`
	Message      openai.ChatCompletionMessage `json:"message"`
	FinishReason string                       `json:"finish_reason,omitempty"`
	Error        *APIError                    `json:"error,omitempty"`
}

// APIError is an error object reported by the gateway or the upstream model.
// Code is a number or a string depending on the upstream provider.
type APIError struct {
	Code    any    `json:"code,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("gateway error (code=%v status=%s)", e.Code, e.Status)
}

// RateLimited reports whether the error is a transient capacity signal
// (RESOURCE_EXHAUSTED or 429).
func (e *APIError) RateLimited() bool {
	if e == nil {
		return false
	}
	if strings.EqualFold(e.Status, "RESOURCE_EXHAUSTED") {
		return true
	}
	switch code := e.Code.(type) {
	case float64:
		return code == 429
	case int:
		return code == 429
	case string:
		return code == "429" || strings.EqualFold(code, "RESOURCE_EXHAUSTED")
	}
	return false
}

// EmbeddedError returns the first error object in the body, or nil.
func (r Response) EmbeddedError() *APIError {
	if r.Error != nil {
		return r.Error
	}
	for i := range r.Choices {
		if r.Choices[i].Error != nil {
			return r.Choices[i].Error
		}
	}
	return nil
}

// Content returns the text of the first choice, or "" when there is none.
func (r Response) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}
