//go:build !cgo

package host

import "errors"

func RunWindow(_ Setup) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
