// Package admin is the client for the admin console API.
package admin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/brizzai/realtor-cli/internal/requester"
	"go.uber.org/fx"
)

var (
	routeListQuestions  = requester.Route{Method: http.MethodGet, Path: "/adminapi/questions"}
	routeAddQuestion    = requester.Route{Method: http.MethodPost, Path: "/adminapi/questions"}
	routeUpdateQuestion = requester.Route{Method: http.MethodPost, Path: "/adminapi/questions/{id}/update"}
	routeAnswerQuestion = requester.Route{Method: http.MethodPost, Path: "/adminapi/questions/{id}/answer"}
	routeDeleteQuestion = requester.Route{Method: http.MethodDelete, Path: "/adminapi/questions/{id}"}
	routeSync           = requester.Route{Method: http.MethodPost, Path: "/adminapi/sync"}
	routeListVisitors   = requester.Route{Method: http.MethodGet, Path: "/adminapi/visitors"}
)

// API is the admin client surface used by the CLI, the TUI and the MCP bridge
type API interface {
	ListQuestions(ctx context.Context, unansweredOnly bool) ([]Question, error)
	AddQuestion(ctx context.Context, question string, answer *string) (*Question, error)
	UpdateQuestion(ctx context.Context, id string, payload UpdateQuestionPayload) (*Question, error)
	AnswerQuestion(ctx context.Context, id, answer string) (*Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	SyncKnowledgeBase(ctx context.Context) (*SyncResponse, error)
	ListVisitors(ctx context.Context) ([]Visitor, error)
}

// Client calls the admin API. Every call needs a signed-in user.
type Client struct {
	requester *requester.HTTPRequester
}

// NewClient creates a Client on top of r
func NewClient(r *requester.HTTPRequester) *Client {
	return &Client{requester: r}
}

// ListQuestions returns all questions, or only unanswered ones
func (c *Client) ListQuestions(ctx context.Context, unansweredOnly bool) ([]Question, error) {
	params := requester.Params{}
	if unansweredOnly {
		params.Query = url.Values{"unansweredOnly": {"true"}}
	}
	var questions []Question
	if err := c.requester.DoJSON(ctx, routeListQuestions, params, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// AddQuestion creates a question. A nil answer is sent as null.
func (c *Client) AddQuestion(ctx context.Context, question string, answer *string) (*Question, error) {
	var q Question
	body := addQuestionRequest{Question: question, Answer: answer}
	if err := c.requester.DoJSON(ctx, routeAddQuestion, requester.Params{Body: body}, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateQuestion edits the question text, the answer, or both
func (c *Client) UpdateQuestion(ctx context.Context, id string, payload UpdateQuestionPayload) (*Question, error) {
	var q Question
	params := requester.Params{Path: map[string]string{"id": id}, Body: payload}
	if err := c.requester.DoJSON(ctx, routeUpdateQuestion, params, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// AnswerQuestion sets the answer of a question
func (c *Client) AnswerQuestion(ctx context.Context, id, answer string) (*Question, error) {
	var q Question
	params := requester.Params{Path: map[string]string{"id": id}, Body: answerQuestionRequest{Answer: answer}}
	if err := c.requester.DoJSON(ctx, routeAnswerQuestion, params, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// DeleteQuestion removes a question
func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	return c.requester.DoJSON(ctx, routeDeleteQuestion, requester.Params{Path: map[string]string{"id": id}}, nil)
}

// SyncKnowledgeBase starts ingesting the answered questions into the knowledge base
func (c *Client) SyncKnowledgeBase(ctx context.Context) (*SyncResponse, error) {
	var resp SyncResponse
	if err := c.requester.DoJSON(ctx, routeSync, requester.Params{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListVisitors returns visitors who left contact details
func (c *Client) ListVisitors(ctx context.Context) ([]Visitor, error) {
	var visitors []Visitor
	if err := c.requester.DoJSON(ctx, routeListVisitors, requester.Params{}, &visitors); err != nil {
		return nil, err
	}
	return visitors, nil
}

func newClient(f *requester.Factory) (*Client, error) {
	r, err := f.New(requester.WithTokenRequired())
	if err != nil {
		return nil, err
	}
	return NewClient(r), nil
}

// Module provides the admin client
var Module = fx.Module("admin",
	fx.Provide(
		newClient,
		func(c *Client) API { return c },
	),
)
