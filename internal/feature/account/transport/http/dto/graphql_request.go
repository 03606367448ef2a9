// Package dto defines the wire shapes of the GraphQL HTTP endpoint.
package dto

// GraphQLRequest is the body of POST /graphql.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// ErrorResponse is returned when the request never reaches the executor.
type ErrorResponse struct {
	Errors []ErrorMessage `json:"errors"`
}

// ErrorMessage mirrors one GraphQL error entry.
type ErrorMessage struct {
	Message string `json:"message"`
}

// NewErrorResponse builds an ErrorResponse with a single message.
func NewErrorResponse(msg string) ErrorResponse {
	return ErrorResponse{Errors: []ErrorMessage{{Message: msg}}}
}
