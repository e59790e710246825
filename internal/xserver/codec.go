package xserver

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Format widths accepted by the XInput property protocol. FormatAuto
// tells SetProperty to reuse whatever width the property already has.
const (
	FormatAuto byte = 0
	Format8    byte = 8
	Format16   byte = 16
	Format32   byte = 32
)

// Property is one decoded device-property reply. Items holds the raw
// elements widened to int64 regardless of the wire width.
type Property struct {
	Type   xproto.Atom
	Format byte
	Items  []int64
}

// Exists reports whether the property was present on the device at
// query time. The server answers a query for an absent property with
// type None instead of an error.
func (p Property) Exists() bool { return p.Type != atomNone }

// packers maps a format width to the routine that serializes values as
// wire items of exactly that width, so an element can never be written
// at two widths.
var packers = map[byte]func([]int64) []byte{
	Format8: func(values []int64) []byte {
		data := make([]byte, len(values))
		for i, v := range values {
			data[i] = byte(v)
		}
		return data
	},
	Format16: func(values []int64) []byte {
		data := make([]byte, 2*len(values))
		for i, v := range values {
			xgb.Put16(data[2*i:], uint16(v))
		}
		return data
	},
	Format32: func(values []int64) []byte {
		data := make([]byte, 4*len(values))
		for i, v := range values {
			xgb.Put32(data[4*i:], uint32(int32(v)))
		}
		return data
	},
}

func packItems(name string, format byte, values []int64) ([]byte, error) {
	pack, ok := packers[format]
	if !ok {
		return nil, &PropertyWriteError{
			Name:   name,
			Format: format,
			Err:    fmt.Errorf("unexpected property format %d", format),
		}
	}
	return pack(values), nil
}

// decodeItems widens the raw item bytes of a property reply to signed
// 64-bit values. 8 and 16-bit items are unsigned on the wire; 32-bit
// items carry signed calibration bounds and are sign-extended.
func decodeItems(format byte, data []byte) []int64 {
	switch format {
	case Format8:
		out := make([]int64, len(data))
		for i, v := range data {
			out[i] = int64(v)
		}
		return out
	case Format16:
		out := make([]int64, len(data)/2)
		for i := range out {
			out[i] = int64(xgb.Get16(data[2*i:]))
		}
		return out
	case Format32:
		out := make([]int64, len(data)/4)
		for i := range out {
			out[i] = int64(int32(xgb.Get32(data[4*i:])))
		}
		return out
	}
	return nil
}
