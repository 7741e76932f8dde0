package fetch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/gremlin/pkg/errors"
)

// StatusError describes a response whose status code indicates failure.
// It is the cause of every HTTP_STATUS error published by a [Controller].
type StatusError struct {
	StatusCode int
	StatusText string // reason phrase, empty when the server sent none
	Body       any    // decoded JSON body, or the raw text when not JSON
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.StatusText != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.StatusText)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// transportError classifies a failure that happened before a usable response
// arrived. *url.Error wrappers added by http.Client are peeled off so the
// message is the underlying cause.
func transportError(err error) *errors.Error {
	if err == nil {
		return errors.New(errors.ErrCodeNetwork, "%s", errors.DefaultMessage)
	}
	var ue *url.Error
	if stderrors.As(err, &ue) && ue.Err != nil {
		err = ue.Err
	}

	code := errors.ErrCodeNetwork
	var ne net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &ne) && ne.Timeout()) {
		code = errors.ErrCodeTimeout
	}

	msg := err.Error()
	if msg == "" {
		msg = errors.DefaultMessage
	}
	return errors.Wrap(code, err, "%s", msg)
}

// panicError converts a recovered panic value. Only error values contribute a
// message; anything else gets the default one.
func panicError(v any) *errors.Error {
	if err, ok := v.(error); ok {
		return transportError(err)
	}
	return errors.New(errors.ErrCodeNetwork, "%s", errors.DefaultMessage)
}

// decodeError classifies a JSON decoding failure of a success response.
func decodeError(err error) *errors.Error {
	msg := err.Error()
	if msg == "" {
		msg = errors.DefaultMessage
	}
	return errors.Wrap(errors.ErrCodeDecode, err, "%s", msg)
}

// statusError builds the error for a non-success response from its already
// read body. The status text wins when present; otherwise the message combines
// the numeric code with the compact JSON body.
func statusError(resp *http.Response, raw []byte) *errors.Error {
	se := &StatusError{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
	}

	var encoded []byte
	var body any
	if err := json.Unmarshal(raw, &body); err == nil {
		se.Body = body
		encoded, _ = json.Marshal(body)
	} else {
		text := strings.TrimSpace(string(raw))
		se.Body = text
		encoded, _ = json.Marshal(text)
	}

	if se.StatusText != "" {
		return errors.Wrap(errors.ErrCodeHTTPStatus, se, "%s", se.StatusText)
	}
	return errors.Wrap(errors.ErrCodeHTTPStatus, se, "Received a %d http code => %s", resp.StatusCode, encoded)
}

// statusText extracts the reason phrase from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	return strings.TrimSpace(text)
}
