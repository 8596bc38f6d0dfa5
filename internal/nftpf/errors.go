package nftpf

import "fmt"

// StatusError reports a non-success HTTP status from the upstream API.
// The cached fetch layer treats it, like any other fetch error, as "no data".
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nftpf: unexpected status %d from %s", e.Code, e.URL)
}

// DecodeError reports a malformed upstream payload.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("nftpf: decoding response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
