// Copyright 2023 Gridscope

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package terna

import (
	"fmt"
	"strings"
)

// RequestError is returned when a request cannot be completed: the API
// responded with a non-success HTTP status, or the request failed at the
// transport level before any response arrived. In the first case Body is the
// vendor's error payload, verbatim; in the second, StatusCode is 0 and Err
// is the transport error.
type RequestError struct {
	StatusCode int    // e.g. 401; 0 when no response was received
	Status     string // e.g. "401 Unauthorized"
	Body       []byte
	Err        error // transport error, when no response was received
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %s", e.Err.Error())
	}
	detail := strings.TrimSpace(string(e.Body))
	if detail == "" {
		return fmt.Sprintf("request failed: %s", e.Status)
	}
	return fmt.Sprintf("request failed: %s: %s", e.Status, detail)
}

func (e *RequestError) Unwrap() error { return e.Err }

// SchemaError is returned when a response body does not have the shape the
// endpoint expects. Payload is the raw body, kept for diagnosis.
type SchemaError struct {
	Reason  string
	Payload []byte
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected response shape: %s", e.Reason)
}

func schemaError(payload []byte, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...), Payload: payload}
}
