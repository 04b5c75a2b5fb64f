package services

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// retryableStatuses are the HTTP statuses worth a second attempt: request
// timeout, conflict, too early, rate limited, and the server-error family.
var retryableStatuses = map[int]struct{}{
	408: {},
	409: {},
	425: {},
	429: {},
}

var retryableErrnos = []syscall.Errno{
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.ECONNABORTED,
	syscall.EPIPE,
	syscall.ETIMEDOUT,
}

var transientMarkers = []string{
	"timeout",
	"temporar",
	"rate limit",
	"too many requests",
}

type statusCarrier interface {
	HTTPStatus() int
}

// isTransientError reports whether a provider failure is likely to succeed
// on retry. Everything it does not recognize is terminal.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	var sc statusCarrier
	if errors.As(err, &sc) {
		status := sc.HTTPStatus()
		if _, ok := retryableStatuses[status]; ok {
			return true
		}
		if status >= 500 && status <= 599 {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsNotFound || dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	for _, errno := range retryableErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
