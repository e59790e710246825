// Package xserver speaks the XInput device-property protocol on behalf
// of the calibration tool: one owned connection+device pair with typed
// property reads and writes on top of it.
package xserver

import (
	"fmt"
	"strconv"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/bnema/xcal/internal/logger"
	"github.com/bnema/xcal/internal/xi"
)

// Evdev property names understood by this tool.
const (
	PropCalibration = "Evdev Axis Calibration"
	PropSwapAxes    = "Evdev Axes Swap"
	PropInversion   = "Evdev Axis Inversion"
)

// xgb does not export the predefined atoms, so the two we need are
// declared here. TypeInteger is XA_INTEGER.
const (
	atomNone    = xproto.Atom(0)
	TypeInteger = xproto.Atom(19)
)

// Session owns the X connection and the opened XInput device as a
// single resource: acquired together, released together, device first.
type Session struct {
	conn     *xgb.Conn
	deviceID byte
	name     string
	closed   bool
}

// DeviceEntry describes one input device reported by the server.
type DeviceEntry struct {
	ID   int
	Name string
	Use  byte
}

// UseString names the server's use class for the device.
func (d DeviceEntry) UseString() string {
	switch d.Use {
	case xi.IsXPointer:
		return "pointer"
	case xi.IsXKeyboard:
		return "keyboard"
	case xi.IsXExtensionPointer:
		return "extension pointer"
	case xi.IsXExtensionKeyboard:
		return "extension keyboard"
	default:
		return "extension device"
	}
}

// Open connects to the X server, resolves spec to exactly one device,
// opens it, and verifies it carries the calibration property. Every
// failure after a partial acquisition releases what was already
// acquired before reporting.
func Open(spec string) (*Session, error) {
	conn, err := connect()
	if err != nil {
		return nil, err
	}

	entries, err := listDevices(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	entry, err := resolveDevice(entries, spec)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := xi.OpenDevice(conn, byte(entry.ID)).Reply(); err != nil {
		conn.Close()
		return nil, &DeviceOpenError{Device: entry.Name, Err: err}
	}

	s := &Session{conn: conn, deviceID: byte(entry.ID), name: entry.Name}

	prop, err := s.GetProperty(PropCalibration)
	if err != nil || !prop.Exists() {
		s.Close()
		return nil, &NotAnEvdevDeviceError{Device: entry.Name}
	}

	logger.Debugf("opened device %q id=%d", entry.Name, entry.ID)
	return s, nil
}

// ListDevices enumerates the server's input devices over a short-lived
// connection.
func ListDevices() ([]DeviceEntry, error) {
	conn, err := connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return listDevices(conn)
}

func connect() (*xgb.Conn, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	if err := xi.Init(conn); err != nil {
		conn.Close()
		return nil, &ConnectionError{Err: err}
	}
	// The server refuses device requests until the client announces
	// which extension version it speaks.
	if _, err := xi.GetExtensionVersion(conn, xi.ExtensionName).Reply(); err != nil {
		conn.Close()
		return nil, &ConnectionError{Err: err}
	}
	return conn, nil
}

func listDevices(conn *xgb.Conn) ([]DeviceEntry, error) {
	reply, err := xi.ListInputDevices(conn).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}
	entries := make([]DeviceEntry, 0, len(reply.Devices))
	for i, dev := range reply.Devices {
		entries = append(entries, DeviceEntry{ID: int(dev.ID), Name: reply.Names[i], Use: dev.Use})
	}
	return entries, nil
}

// resolveDevice picks the device matching spec. A spec made entirely of
// digits is a numeric device id and takes precedence over name lookup;
// anything else matches by exact name. More than one match is ambiguous
// and the caller must disambiguate by id.
func resolveDevice(entries []DeviceEntry, spec string) (DeviceEntry, error) {
	id, numeric := parseDeviceID(spec)
	var found DeviceEntry
	matches := 0
	for _, e := range entries {
		if (numeric && e.ID == id) || (!numeric && e.Name == spec) {
			found = e
			matches++
		}
	}
	switch matches {
	case 0:
		return DeviceEntry{}, &DeviceResolutionError{Spec: spec}
	case 1:
		return found, nil
	default:
		return DeviceEntry{}, &DeviceResolutionError{Spec: spec, Matches: matches}
	}
}

func parseDeviceID(spec string) (int, bool) {
	if spec == "" {
		return 0, false
	}
	for _, r := range spec {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(spec)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Name returns the resolved device name.
func (s *Session) Name() string { return s.name }

// DeviceID returns the numeric device id.
func (s *Session) DeviceID() int { return int(s.deviceID) }

// GetProperty runs a blocking query for one named property. An absent
// property is not an error: the reply carries type None and no items.
func (s *Session) GetProperty(name string) (Property, error) {
	atom, err := s.ParseAtom(name)
	if err != nil {
		return Property{}, &PropertyQueryError{Name: name, Err: err}
	}
	reply, err := xi.GetDeviceProperty(s.conn, atom, atomNone, 0, 1000, s.deviceID, false).Reply()
	if err != nil {
		return Property{}, &PropertyQueryError{Name: name, Err: err}
	}
	return Property{
		Type:   reply.Type,
		Format: reply.Format,
		Items:  decodeItems(reply.Format, reply.Data),
	}, nil
}

// SetProperty runs a blocking write of values at the given width.
// FormatAuto reuses the property's current width, which requires a
// successful query of the existing format.
func (s *Session) SetProperty(name string, format byte, values []int64) error {
	if len(values) == 0 {
		return &PropertyWriteError{Name: name, Format: format, Err: fmt.Errorf("need at least one value")}
	}
	atom, err := s.ParseAtom(name)
	if err != nil {
		return &PropertyWriteError{Name: name, Format: format, Err: err}
	}
	if format == FormatAuto {
		prop, err := s.GetProperty(name)
		if err != nil {
			return &PropertyWriteError{Name: name, Err: fmt.Errorf("failed to get existing type and format: %w", err)}
		}
		format = prop.Format
	}
	data, err := packItems(name, format, values)
	if err != nil {
		return err
	}
	err = xi.ChangeDevicePropertyChecked(s.conn, atom, TypeInteger, s.deviceID,
		format, xproto.PropModeReplace, uint32(len(values)), data).Check()
	if err != nil {
		return &PropertyWriteError{Name: name, Format: format, Err: err}
	}
	return nil
}

// Sync round-trips a no-op request so every write issued before it has
// reached the server when Sync returns.
func (s *Session) Sync() error {
	_, err := xproto.GetInputFocus(s.conn).Reply()
	return err
}

// ParseAtom resolves a property name to its atom. Digits-only strings
// are treated as already-resolved numeric atoms and skip the InternAtom
// round-trip.
func (s *Session) ParseAtom(name string) (xproto.Atom, error) {
	if atom, ok := numericAtom(name); ok {
		return atom, nil
	}
	reply, err := xproto.InternAtom(s.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return atomNone, err
	}
	return reply.Atom, nil
}

func numericAtom(name string) (xproto.Atom, bool) {
	if name == "" {
		return atomNone, false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return atomNone, false
		}
	}
	n, err := strconv.ParseUint(name, 10, 32)
	if err != nil {
		return atomNone, false
	}
	return xproto.Atom(n), true
}

// Close releases the device handle and then the connection, in that
// order, at most once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if err := xi.CloseDeviceChecked(s.conn, s.deviceID).Check(); err != nil {
		logger.Debugf("close device: %v", err)
	}
	s.conn.Close()
}
