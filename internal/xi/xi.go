// Package xi implements the subset of the XInput extension protocol
// this tool needs (device listing, open/close, device properties),
// hand-written over the xgb core in the same shape as xgb's generated
// extension packages. Wire layouts follow XIproto: requests carry the
// extension's major opcode, replies are the 32-byte header plus
// payload.
package xi

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// ExtensionName is the name the server registers the extension under.
const ExtensionName = "XInputExtension"

// Minor opcodes of the requests used here.
const (
	opGetExtensionVersion  = 1
	opListInputDevices     = 2
	opOpenDevice           = 3
	opCloseDevice          = 4
	opChangeDeviceProperty = 37
	opGetDeviceProperty    = 39
)

// Device use classes reported by ListInputDevices.
const (
	IsXPointer           = 0
	IsXKeyboard          = 1
	IsXExtensionDevice   = 2
	IsXExtensionKeyboard = 3
	IsXExtensionPointer  = 4
)

// Error numbers defined by the extension, relative to its first-error
// base.
var errorNames = map[int]string{
	0: "Device",
	1: "Event",
	2: "Mode",
	3: "DeviceBusy",
	4: "Class",
}

// Init must be called before using any other request in this package.
// It resolves the extension's major opcode and registers its error
// constructors so extension errors unblock the cookies waiting on
// them.
func Init(c *xgb.Conn) error {
	reply, err := xproto.QueryExtension(c, uint16(len(ExtensionName)), ExtensionName).Reply()
	switch {
	case err != nil:
		return err
	case !reply.Present:
		return xgb.Errorf("no extension named %s could be found on the server", ExtensionName)
	}

	c.ExtLock.Lock()
	c.Extensions[ExtensionName] = reply.MajorOpcode
	for errNum, name := range errorNames {
		xgb.NewErrorFuncs[int(reply.FirstError)+errNum] = newExtensionErrorFunc(name)
	}
	c.ExtLock.Unlock()

	return nil
}

// ExtensionError is any error generated by the extension, e.g. a
// BadDevice for an id the server does not know.
type ExtensionError struct {
	NiceName string
	Sequence uint16
	BadValue uint32
}

func newExtensionErrorFunc(name string) xgb.NewErrorFun {
	return func(buf []byte) xgb.Error {
		return ExtensionError{
			NiceName: name,
			Sequence: xgb.Get16(buf[2:]),
			BadValue: xgb.Get32(buf[4:]),
		}
	}
}

func (e ExtensionError) SequenceId() uint16 { return e.Sequence }

func (e ExtensionError) BadId() uint32 { return e.BadValue }

func (e ExtensionError) Error() string {
	return fmt.Sprintf("Bad%s {NiceName: %s, Sequence: %d, BadValue: %d}",
		e.NiceName, e.NiceName, e.Sequence, e.BadValue)
}

func extOpcode(c *xgb.Conn) byte {
	c.ExtLock.RLock()
	defer c.ExtLock.RUnlock()
	return c.Extensions[ExtensionName]
}

// GetExtensionVersion announces the client's extension name and
// returns the version the server speaks. Servers refuse device
// requests from clients that skipped this handshake.
func GetExtensionVersion(c *xgb.Conn, name string) GetExtensionVersionCookie {
	cookie := c.NewCookie(true, true)
	c.NewRequest(getExtensionVersionRequest(c, name), cookie)
	return GetExtensionVersionCookie{cookie}
}

type GetExtensionVersionCookie struct {
	*xgb.Cookie
}

type GetExtensionVersionReply struct {
	Sequence     uint16
	MajorVersion uint16
	MinorVersion uint16
	Present      bool
}

func (cook GetExtensionVersionCookie) Reply() (*GetExtensionVersionReply, error) {
	buf, err := cook.Cookie.Reply()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return getExtensionVersionReply(buf), nil
}

func getExtensionVersionRequest(c *xgb.Conn, name string) []byte {
	size := xgb.Pad(8 + len(name))
	buf := make([]byte, size)

	buf[0] = extOpcode(c)
	buf[1] = opGetExtensionVersion
	xgb.Put16(buf[2:], uint16(size/4))
	xgb.Put16(buf[4:], uint16(len(name)))
	copy(buf[8:], name)

	return buf
}

func getExtensionVersionReply(buf []byte) *GetExtensionVersionReply {
	return &GetExtensionVersionReply{
		Sequence:     xgb.Get16(buf[2:]),
		MajorVersion: xgb.Get16(buf[8:]),
		MinorVersion: xgb.Get16(buf[10:]),
		Present:      buf[12] == 1,
	}
}

// DeviceInfo is one device record from a ListInputDevices reply.
type DeviceInfo struct {
	Type       xproto.Atom
	ID         byte
	NumClasses byte
	Use        byte
}

// ListInputDevices enumerates the server's input devices.
func ListInputDevices(c *xgb.Conn) ListInputDevicesCookie {
	cookie := c.NewCookie(true, true)
	c.NewRequest(listInputDevicesRequest(c), cookie)
	return ListInputDevicesCookie{cookie}
}

type ListInputDevicesCookie struct {
	*xgb.Cookie
}

// ListInputDevicesReply carries the device records and, in the same
// order, the device names.
type ListInputDevicesReply struct {
	Sequence uint16
	Devices  []DeviceInfo
	Names    []string
}

func (cook ListInputDevicesCookie) Reply() (*ListInputDevicesReply, error) {
	buf, err := cook.Cookie.Reply()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return listInputDevicesReply(buf), nil
}

func listInputDevicesRequest(c *xgb.Conn) []byte {
	buf := make([]byte, 4)

	buf[0] = extOpcode(c)
	buf[1] = opListInputDevices
	xgb.Put16(buf[2:], 1)

	return buf
}

func listInputDevicesReply(buf []byte) *ListInputDevicesReply {
	ndevices := int(buf[8])
	reply := &ListInputDevicesReply{
		Sequence: xgb.Get16(buf[2:]),
		Devices:  make([]DeviceInfo, ndevices),
		Names:    make([]string, ndevices),
	}

	// Fixed 8-byte device records, then the variable per-device input
	// class records (each carries its own byte length), then counted
	// name strings, all in device order.
	p := 32
	for i := 0; i < ndevices; i++ {
		reply.Devices[i] = DeviceInfo{
			Type:       xproto.Atom(xgb.Get32(buf[p:])),
			ID:         buf[p+4],
			NumClasses: buf[p+5],
			Use:        buf[p+6],
		}
		p += 8
	}
	for i := 0; i < ndevices; i++ {
		for j := byte(0); j < reply.Devices[i].NumClasses; j++ {
			p += int(buf[p+1])
		}
	}
	for i := 0; i < ndevices; i++ {
		n := int(buf[p])
		reply.Names[i] = string(buf[p+1 : p+1+n])
		p += 1 + n
	}

	return reply
}

// OpenDevice asks the server to open the extension device.
func OpenDevice(c *xgb.Conn, deviceID byte) OpenDeviceCookie {
	cookie := c.NewCookie(true, true)
	c.NewRequest(openDeviceRequest(c, deviceID), cookie)
	return OpenDeviceCookie{cookie}
}

type OpenDeviceCookie struct {
	*xgb.Cookie
}

type OpenDeviceReply struct {
	Sequence   uint16
	NumClasses byte
}

func (cook OpenDeviceCookie) Reply() (*OpenDeviceReply, error) {
	buf, err := cook.Cookie.Reply()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return &OpenDeviceReply{Sequence: xgb.Get16(buf[2:]), NumClasses: buf[8]}, nil
}

func openDeviceRequest(c *xgb.Conn, deviceID byte) []byte {
	buf := make([]byte, 8)

	buf[0] = extOpcode(c)
	buf[1] = opOpenDevice
	xgb.Put16(buf[2:], 2)
	buf[4] = deviceID

	return buf
}

// CloseDeviceChecked releases an opened device; Check on the returned
// cookie round-trips the request.
func CloseDeviceChecked(c *xgb.Conn, deviceID byte) CloseDeviceCookie {
	cookie := c.NewCookie(true, false)
	c.NewRequest(closeDeviceRequest(c, deviceID), cookie)
	return CloseDeviceCookie{cookie}
}

type CloseDeviceCookie struct {
	*xgb.Cookie
}

func (cook CloseDeviceCookie) Check() error {
	return cook.Cookie.Check()
}

func closeDeviceRequest(c *xgb.Conn, deviceID byte) []byte {
	buf := make([]byte, 8)

	buf[0] = extOpcode(c)
	buf[1] = opCloseDevice
	xgb.Put16(buf[2:], 2)
	buf[4] = deviceID

	return buf
}

// GetDeviceProperty queries a device property. A type of None means
// any type; length is in 32-bit units, as in the core GetProperty.
func GetDeviceProperty(c *xgb.Conn, property, typ xproto.Atom, offset, length uint32, deviceID byte, del bool) GetDevicePropertyCookie {
	cookie := c.NewCookie(true, true)
	c.NewRequest(getDevicePropertyRequest(c, property, typ, offset, length, deviceID, del), cookie)
	return GetDevicePropertyCookie{cookie}
}

type GetDevicePropertyCookie struct {
	*xgb.Cookie
}

// GetDevicePropertyReply holds the property metadata and the raw item
// bytes: NumItems elements of Format/8 bytes each. A Type of None
// means the property does not exist on the device.
type GetDevicePropertyReply struct {
	Sequence   uint16
	Type       xproto.Atom
	BytesAfter uint32
	NumItems   uint32
	Format     byte
	DeviceID   byte
	Data       []byte
}

func (cook GetDevicePropertyCookie) Reply() (*GetDevicePropertyReply, error) {
	buf, err := cook.Cookie.Reply()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return getDevicePropertyReply(buf), nil
}

func getDevicePropertyRequest(c *xgb.Conn, property, typ xproto.Atom, offset, length uint32, deviceID byte, del bool) []byte {
	buf := make([]byte, 24)

	buf[0] = extOpcode(c)
	buf[1] = opGetDeviceProperty
	xgb.Put16(buf[2:], 6)
	xgb.Put32(buf[4:], uint32(property))
	xgb.Put32(buf[8:], uint32(typ))
	xgb.Put32(buf[12:], offset)
	xgb.Put32(buf[16:], length)
	buf[20] = deviceID
	if del {
		buf[21] = 1
	}

	return buf
}

func getDevicePropertyReply(buf []byte) *GetDevicePropertyReply {
	reply := &GetDevicePropertyReply{
		Sequence:   xgb.Get16(buf[2:]),
		Type:       xproto.Atom(xgb.Get32(buf[8:])),
		BytesAfter: xgb.Get32(buf[12:]),
		NumItems:   xgb.Get32(buf[16:]),
		Format:     buf[20],
		DeviceID:   buf[21],
	}
	n := int(reply.NumItems) * int(reply.Format) / 8
	reply.Data = buf[32 : 32+n]
	return reply
}

// ChangeDevicePropertyChecked replaces (or appends to, depending on
// mode) a device property with numItems elements packed in data at the
// given format width. Check on the returned cookie round-trips the
// request.
func ChangeDevicePropertyChecked(c *xgb.Conn, property, typ xproto.Atom, deviceID, format, mode byte, numItems uint32, data []byte) ChangeDevicePropertyCookie {
	cookie := c.NewCookie(true, false)
	c.NewRequest(changeDevicePropertyRequest(c, property, typ, deviceID, format, mode, numItems, data), cookie)
	return ChangeDevicePropertyCookie{cookie}
}

type ChangeDevicePropertyCookie struct {
	*xgb.Cookie
}

func (cook ChangeDevicePropertyCookie) Check() error {
	return cook.Cookie.Check()
}

func changeDevicePropertyRequest(c *xgb.Conn, property, typ xproto.Atom, deviceID, format, mode byte, numItems uint32, data []byte) []byte {
	size := xgb.Pad(20 + len(data))
	buf := make([]byte, size)

	buf[0] = extOpcode(c)
	buf[1] = opChangeDeviceProperty
	xgb.Put16(buf[2:], uint16(size/4))
	xgb.Put32(buf[4:], uint32(property))
	xgb.Put32(buf[8:], uint32(typ))
	buf[12] = deviceID
	buf[13] = format
	buf[14] = mode
	xgb.Put32(buf[16:], numItems)
	copy(buf[20:], data)

	return buf
}
