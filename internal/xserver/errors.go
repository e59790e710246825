package xserver

import "fmt"

// ConnectionError means the X server could not be reached or the XInput
// extension handshake failed.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("unable to connect to X server: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DeviceResolutionError covers both "no such device" and "more than one
// device with that name". Matches is 0 for not found.
type DeviceResolutionError struct {
	Spec    string
	Matches int
}

func (e *DeviceResolutionError) Error() string {
	if e.Matches > 1 {
		return fmt.Sprintf("there are %d devices named %q, use the numeric device id to select one", e.Matches, e.Spec)
	}
	return fmt.Sprintf("unable to find device %q", e.Spec)
}

// DeviceOpenError means the server refused to open the resolved device.
type DeviceOpenError struct {
	Device string
	Err    error
}

func (e *DeviceOpenError) Error() string {
	return fmt.Sprintf("unable to open device %q: %v", e.Device, e.Err)
}

func (e *DeviceOpenError) Unwrap() error { return e.Err }

// NotAnEvdevDeviceError means the opened device does not carry the
// calibration property, so the evdev driver is not managing it.
type NotAnEvdevDeviceError struct {
	Device string
}

func (e *NotAnEvdevDeviceError) Error() string {
	return fmt.Sprintf("%q property missing on device %q, not a (valid) evdev device", PropCalibration, e.Device)
}

// PropertyQueryError wraps a failed GetDeviceProperty round-trip.
type PropertyQueryError struct {
	Name string
	Err  error
}

func (e *PropertyQueryError) Error() string {
	return fmt.Sprintf("failed to query property %q: %v", e.Name, e.Err)
}

func (e *PropertyQueryError) Unwrap() error { return e.Err }

// PropertyWriteError wraps a failed ChangeDeviceProperty, including an
// unsupported format width.
type PropertyWriteError struct {
	Name   string
	Format byte
	Err    error
}

func (e *PropertyWriteError) Error() string {
	return fmt.Sprintf("failed to write property %q: %v", e.Name, e.Err)
}

func (e *PropertyWriteError) Unwrap() error { return e.Err }
