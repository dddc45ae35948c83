package httperr

import "errors"

type BusinessError struct {
	Code    string
	Details map[string]any
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// ErrBusinessDetails carries structured context (which slot, which
// threshold) so callers can decide whether a retry makes sense.
func ErrBusinessDetails(code string, details map[string]any) error {
	return BusinessError{Code: code, Details: details}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func BusinessDetails(err error) map[string]any {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Details
	}
	return nil
}
