package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// successEnvelope wraps successful response bodies.
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// errorEnvelope wraps error response bodies.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the API envelope: success
// responses carry {success, data}, errors carry {success, code, error}.
// Clients branch on the success flag before touching data.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &errorEnvelope{
			Success: false,
			Code:    apiErr.Code,
			Error:   apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}
	if statusErr, ok := v.(huma.StatusError); ok {
		return &errorEnvelope{
			Success: false,
			Code:    statusToCode(statusErr.GetStatus()),
			Error:   statusErr.Error(),
		}, nil
	}

	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}

	return &successEnvelope{
		Success: code < 400,
		Data:    v,
	}, nil
}
