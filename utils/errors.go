package utils

import "fmt"

// WrapRequestError returns a wrapped request error
func WrapRequestError(err error, method, endpoint string) error {
	return fmt.Errorf("%s %s: %w", method, endpoint, err)
}

// WrapDecodeError returns a wrapped decode error
func WrapDecodeError(err error) error {
	return fmt.Errorf("decode error: %w", err)
}

// WrapUploadError returns a wrapped upload error
func WrapUploadError(err error) error {
	return fmt.Errorf("upload error: %w", err)
}

// WrapDownloadError returns a wrapped download error
func WrapDownloadError(err error) error {
	return fmt.Errorf("download error: %w", err)
}

// WrapSubscribeError returns a wrapped subscribe error
func WrapSubscribeError(err error) error {
	return fmt.Errorf("subscribe error: %w", err)
}

// WrapDispatchError returns a wrapped dispatch error
func WrapDispatchError(err error) error {
	return fmt.Errorf("dispatch error: %w", err)
}
