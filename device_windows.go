//go:build windows

package serialrw

import (
	"errors"
	"io"
	"math"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const (
	dcbBinary = 0x00000001
	dcbParity = 0x00000002

	noParity    = 0
	oddParity   = 1
	evenParity  = 2
	oneStopBit  = 0
	twoStopBits = 2

	// A read returns as soon as one byte arrives, or empty after this many
	// milliseconds so the reader can observe Close.
	readTimeoutMillis = 100
)

type windowsDevice struct {
	handle windows.Handle
	once   sync.Once
}

func openDevice(name string, cfg Config) (io.ReadWriteCloser, error) {
	path, err := windows.UTF16PtrFromString(`\\.\` + name)
	if err != nil {
		return nil, err
	}

	handle, err := windows.CreateFile(path, windows.GENERIC_READ|windows.GENERIC_WRITE, 0, nil, windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		return nil, err
	}

	if err := setCommState(handle, cfg); err != nil {
		_ = windows.CloseHandle(handle)
		return nil, err
	}
	return &windowsDevice{handle: handle}, nil
}

func setCommState(handle windows.Handle, cfg Config) error {
	var dcb windows.DCB
	dcb.DCBlength = uint32(unsafe.Sizeof(dcb))
	if err := windows.GetCommState(handle, &dcb); err != nil {
		return err
	}

	dcb.BaudRate = uint32(cfg.BaudRate)
	dcb.ByteSize = uint8(cfg.DataBits)
	dcb.Flags = dcbBinary
	switch cfg.Parity {
	case ParityEven:
		dcb.Parity = evenParity
		dcb.Flags |= dcbParity
	case ParityOdd:
		dcb.Parity = oddParity
		dcb.Flags |= dcbParity
	default:
		dcb.Parity = noParity
	}
	dcb.StopBits = oneStopBit
	if cfg.StopBits == StopBitsTwo {
		dcb.StopBits = twoStopBits
	}
	if err := windows.SetCommState(handle, &dcb); err != nil {
		return err
	}

	return windows.SetCommTimeouts(handle, &windows.CommTimeouts{
		ReadIntervalTimeout:        math.MaxUint32,
		ReadTotalTimeoutMultiplier: math.MaxUint32,
		ReadTotalTimeoutConstant:   readTimeoutMillis,
	})
}

func (d *windowsDevice) Read(p []byte) (int, error) {
	var done uint32
	err := windows.ReadFile(d.handle, p, &done, nil)
	return int(done), err
}

func (d *windowsDevice) Write(p []byte) (int, error) {
	var done uint32
	err := windows.WriteFile(d.handle, p, &done, nil)
	return int(done), err
}

func (d *windowsDevice) Close() (err error) {
	d.once.Do(func() {
		err = windows.CloseHandle(d.handle)
	})
	return
}

func listPorts() ([]string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, `HARDWARE\DEVICEMAP\SERIALCOMM`, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer key.Close()

	names, err := key.ReadValueNames(0)
	if err != nil {
		return nil, err
	}

	ports := make([]string, 0, len(names))
	for _, name := range names {
		port, _, err := key.GetStringValue(name)
		if err != nil {
			continue
		}
		ports = append(ports, port)
	}
	return ports, nil
}
