package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
)

// downstreamError matches the error envelope written by httputil.
type downstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response and returns the
// matching AppError. Structured bodies keep the upstream message.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", service, resp.StatusCode, err)
	}

	message := http.StatusText(resp.StatusCode)
	code := ""
	var env downstreamError
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		message, code = env.Error.Message, env.Error.Code
	} else if len(body) > 0 && len(body) < 256 {
		message = string(body)
	}
	return mapStatus(resp.StatusCode, code, message, service)
}

func mapStatus(status int, code, message, service string) error {
	qualified := fmt.Sprintf("%s: %s", service, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(service+" resource", message)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusTooManyRequests, status >= 500:
		return apperrors.Unavailable(qualified, fmt.Errorf("%w: status %d %s", apperrors.ErrServiceUnavail, status, code))
	default:
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		return &apperrors.AppError{Code: code, Message: qualified, Status: http.StatusBadGateway, Err: apperrors.ErrInternal}
	}
}
