package ble

import (
	"github.com/pkg/errors"
)

const maxRetryAttempts = 3

func retry(method string, fn func() error) error {
	err := errors.New("not error")
	attempts := 0
	for err != nil && attempts < maxRetryAttempts {
		if attempts > 0 {
			logger.Warn("retrying", "method", method, "attempt", attempts, "err", err)
		}
		attempts += 1
		err = fn()
	}
	if err != nil {
		return errors.Wrap(err, method+" exceeded attempts issue")
	}
	return nil
}
