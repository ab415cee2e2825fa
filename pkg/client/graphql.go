package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// GraphQL posts a query to the API root and decodes the data envelope into
// out. Errors reported inside a 200 response surface as a RequestError so
// callers handle them the same way as REST failures.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any, out any) error {
	var envelope graphqlResponse

	err := c.Do(ctx, http.MethodPost, "", nil, graphqlRequest{Query: query, Variables: variables}, &envelope)
	if err != nil {
		return err
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, gqlErr := range envelope.Errors {
			messages = append(messages, gqlErr.Message)
		}

		return &RequestError{
			StatusCode: http.StatusOK,
			Method:     http.MethodPost,
			Path:       "/",
			Body:       fmt.Sprintf("graphql errors: %s", strings.Join(messages, "; ")),
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode graphql data: %w", err)
		}
	}

	return nil
}
