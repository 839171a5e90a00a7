package fieldproto

import (
	"strings"
)

// ResponseType represents the type of a command response.
type ResponseType int

const (
	// ResponseOK indicates a successful response.
	ResponseOK ResponseType = iota
	// ResponseError indicates an error response.
	ResponseError
)

// Response is the result of dispatching one line.
type Response struct {
	Type ResponseType
	Data string // The response data (for OK) or error message (for Error)
}

// NewOKResponse creates a successful response with the given data.
func NewOKResponse(data string) Response {
	return Response{Type: ResponseOK, Data: data}
}

// NewErrorResponse creates an error response with the given message.
func NewErrorResponse(message string) Response {
	return Response{Type: ResponseError, Data: message}
}

// NewInvalidCommandResponse is the reply for a line no command matched.
func NewInvalidCommandResponse() Response {
	return NewErrorResponse(InvalidCommandMessage)
}

// IsOK returns true if this is a successful response.
func (r Response) IsOK() bool {
	return r.Type == ResponseOK
}

// IsError returns true if this is an error response.
func (r Response) IsError() bool {
	return r.Type == ResponseError
}

// Format returns the response formatted for transmission over the protocol.
func (r Response) Format() string {
	switch r.Type {
	case ResponseOK:
		return OKPrefix + r.Data
	case ResponseError:
		return ErrorPrefix + r.Data
	default:
		return ErrorPrefix + "unknown response type"
	}
}

// FormatLine returns Format followed by a newline.
func (r Response) FormatLine() string {
	return r.Format() + "\n"
}

// ResponseParser parses response lines from the socket protocol.
type ResponseParser struct{}

// NewResponseParser creates a new response parser.
func NewResponseParser() *ResponseParser {
	return &ResponseParser{}
}

// Parse parses an OK: or ERR: line.
func (p *ResponseParser) Parse(line string) (Response, error) {
	trimmed := strings.TrimRight(line, "\r\n")

	if strings.HasPrefix(trimmed, OKPrefix) {
		return NewOKResponse(trimmed[len(OKPrefix):]), nil
	} else if strings.HasPrefix(trimmed, ErrorPrefix) {
		return NewErrorResponse(trimmed[len(ErrorPrefix):]), nil
	}

	return Response{}, newUnexpectedResponseError(trimmed)
}

// parseRequest strips the optional CMD: prefix and line ending from a
// request line.
func parseRequest(line string) string {
	line = strings.TrimRight(line, "\r\n")
	return strings.TrimPrefix(line, CommandPrefix)
}
