package api

import (
	"encoding/json"

	"learnai_quiz_client/internal/util"
)

// Unwrap normalizes the backend's inconsistent response envelopes. The body
// may be the resource itself or the resource nested under a wrapper key;
// candidate keys are tried in order and the first present non-null one wins,
// otherwise the raw body is returned unchanged.
func Unwrap(body []byte, keys ...string) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Not a JSON object at all; let the caller's decode report it.
		return body, nil
	}
	for _, key := range keys {
		if inner, ok := envelope[key]; ok && len(inner) > 0 && string(inner) != "null" {
			return inner, nil
		}
	}
	return body, nil
}

// decodeInto unwraps and decodes, mapping parse failures to the malformed
// response error so they follow the transient-failure path.
func decodeInto(body []byte, out interface{}, keys ...string) error {
	inner, err := Unwrap(body, keys...)
	if err != nil {
		return util.ErrMalformedBody
	}
	if err := json.Unmarshal(inner, out); err != nil {
		return util.ErrMalformedBody
	}
	return nil
}

// errorMessage digs a human-readable message out of an error response body,
// falling back through the shapes the backend has been seen to emit.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error   string `json:"error"`
		Details string `json:"details"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			return payload.Error
		case payload.Details != "":
			return payload.Details
		case payload.Message != "":
			return payload.Message
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return fallback
}
