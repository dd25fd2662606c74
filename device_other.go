//go:build !linux && !windows

package serialrw

import "io"

func openDevice(_ string, _ Config) (io.ReadWriteCloser, error) {
	return nil, ErrUnsupportedPlatform
}

func listPorts() ([]string, error) {
	return nil, ErrUnsupportedPlatform
}
