package status

// HTTPError is an error carrying the status code a server is expected to respond with.
// Values are comparable, so errors.Is works on them as-is.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrRequestLineTooLong  = NewError(RequestURITooLong, "request line is too long")
	ErrHeaderLineTooLong   = NewError(RequestHeaderFieldsTooLarge, "header line is too long")
	ErrInvalidRequestLine  = NewError(BadRequest, "malformed request line")
	ErrInvalidStatusLine   = NewError(BadRequest, "malformed status line")
	ErrInvalidStatusCode   = NewError(BadRequest, "unknown status code")
	ErrInvalidHeaderLine   = NewError(BadRequest, "malformed header line")
	ErrInvalidMethod       = NewError(NotImplemented, "request method is not supported")
	ErrInvalidRequestPath  = NewError(BadRequest, "invalid request path")
	ErrUnsupportedProtocol = NewError(HTTPVersionNotSupported, "HTTP version not supported")
	ErrBadContentLength    = NewError(BadRequest, "malformed Content-Length value")
	ErrChunkSizeMalformed  = NewError(BadRequest, "malformed chunk size")
	ErrBadChunk            = NewError(BadRequest, "malformed chunk-encoded data")
	ErrBodyTooLarge        = NewError(RequestEntityTooLarge, "request body is too large")
	ErrTooManyHeaders      = NewError(RequestHeaderFieldsTooLarge, "too many headers")
	ErrAlreadyFinished     = NewError(InternalServerError, "message is already complete")
	ErrEmptyInputRejected  = NewError(InternalServerError, "empty input fed to the parser")

	ErrRangeHeaderMalformed = NewError(BadRequest, "malformed Range header")
	ErrRangeNotSatisfiable  = NewError(RequestedRangeNotSatisfiable, "requested range is not satisfiable")

	ErrBadRequest           = NewError(BadRequest, "bad request")
	ErrNotFound             = NewError(NotFound, "not found")
	ErrMethodNotAllowed     = NewError(MethodNotAllowed, "method not allowed")
	ErrRequestTimeout       = NewError(RequestTimeout, "request timeout")
	ErrUnsupportedMediaType = NewError(UnsupportedMediaType, "unsupported media type")
	ErrInternalServerError  = NewError(InternalServerError, "internal server error")
)

// IsSilent reports whether the peer exceeded its resource budget, in which case the
// connection is closed without a response.
func IsSilent(err error) bool {
	return err == ErrRequestLineTooLong || err == ErrHeaderLineTooLong
}

// CodeOf extracts the status code from the error, falling back to 500 for errors that
// aren't HTTPError.
func CodeOf(err error) Code {
	if httpErr, ok := err.(HTTPError); ok {
		return httpErr.Code
	}

	return InternalServerError
}
