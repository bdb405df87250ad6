package dispatch

import "errors"

var (
	// ErrMissingCredential is returned when the local tier failed and no
	// cloud credential is configured. It is terminal for the request.
	ErrMissingCredential = errors.New("cloud fallback needs OPENAI_API_KEY")
	// ErrEmptyPrompt rejects a prompt that is empty after trimming.
	ErrEmptyPrompt = errors.New("prompt must not be empty")
)

// LocalError describes why the local tier could not produce an answer. It
// never reaches callers of Answer; the dispatcher inspects it to decide on
// the cloud attempt.
type LocalError struct {
	Reason string
	Err    error
}

func (e *LocalError) Error() string {
	if e.Err != nil {
		return "local gateway: " + e.Reason + ": " + e.Err.Error()
	}
	return "local gateway: " + e.Reason
}

func (e *LocalError) Unwrap() error { return e.Err }

// UpstreamError is a terminal cloud-tier failure.
type UpstreamError struct {
	Detail string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return "cloud provider: " + e.Detail + ": " + e.Err.Error()
	}
	return "cloud provider: " + e.Detail
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is a cloud-tier failure.
func IsUpstream(err error) bool {
	var e *UpstreamError
	return errors.As(err, &e)
}
