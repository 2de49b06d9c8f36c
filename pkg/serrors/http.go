package serrors

import (
	"errors"
	"net/http"
)

// Describe resolves err into the HTTP status, kind and client-safe message
// it should be served with. Plain errors and server-side kinds other than
// ErrUnavailable and ErrTimeout are described as ErrInternal without their
// text.
func Describe(err error) (int, Kind, string) {
	k := KindOf(err)
	if k == nil {
		return ErrInternal.Status(), ErrInternal, publicText(ErrInternal)
	}

	status := k.Status()
	if status >= http.StatusInternalServerError && k != ErrUnavailable && k != ErrTimeout {
		return ErrInternal.Status(), ErrInternal, publicText(ErrInternal)
	}

	msg := publicText(k)
	var se *Error
	if errors.As(err, &se) && se.Message() != "" {
		msg = se.Message()
	}

	return status, k, msg
}

func publicText(k Kind) string {
	if kk, ok := k.(*kind); ok && kk.public != "" {
		return kk.public
	}

	return k.Error()
}
