package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// errorBody is the shape of a sequencer error response. Both fields are required.
type errorBody struct {
	Code    *string `json:"code"`
	Message *string `json:"message"`
}

var errMissingErrorFields = errors.New("code and message are required")

// parseJSON decodes a successful response into T.
func parseJSON[T any](resp *http.Response) (T, error) {
	var out T
	body, err := parseRaw(resp)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		var zero T
		return zero, newTransportError(KindDecode, err)
	}
	return out, nil
}

// parseRaw returns the body of a successful response. 400 and 500 responses
// are inspected for a sequencer error before any status check.
func parseRaw(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusInternalServerError || resp.StatusCode == http.StatusBadRequest {
		return nil, parseErrorResponse(resp)
	}

	if !IsSuccessStatus(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, newStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(KindBody, err)
	}
	return body, nil
}

func parseErrorResponse(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Kind: KindBody, StatusCode: resp.StatusCode, Err: err}
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return &MalformedApplicationError{StatusCode: resp.StatusCode, Err: err}
	}
	if body.Code == nil || body.Message == nil {
		return &MalformedApplicationError{StatusCode: resp.StatusCode, Err: errMissingErrorFields}
	}

	return &ApplicationError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCode(*body.Code),
		Message:    *body.Message,
	}
}
