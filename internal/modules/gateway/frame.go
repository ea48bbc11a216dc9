package gateway

import "encoding/binary"

// Opcode identifies a frame type.
type Opcode byte

const (
	OpText  Opcode = 0x1
	OpClose Opcode = 0x8
	OpPing  Opcode = 0x9
	OpPong  Opcode = 0xA
)

// maxPayload bounds a single inbound frame. Anything larger is treated as
// malformed rather than buffered.
const maxPayload = 1 << 20

// Frame is one decoded protocol unit. The rest of the system never touches
// raw socket bytes; everything goes through DecodeFrame/EncodeFrame.
type Frame struct {
	Opcode  Opcode
	Payload []byte
}

// DecodeFrame parses a single frame from the front of buf and reports how
// many bytes it consumed. An incomplete or malformed buffer yields (nil, 0);
// the caller keeps the connection open and waits for more bytes or drops
// the garbage input.
func DecodeFrame(buf []byte) (*Frame, int) {
	if len(buf) < 2 {
		return nil, 0
	}

	opcode := Opcode(buf[0] & 0x0F)
	masked := buf[1]&0x80 != 0
	length := uint64(buf[1] & 0x7F)
	offset := 2

	switch length {
	case 126:
		if len(buf) < offset+2 {
			return nil, 0
		}
		length = uint64(binary.BigEndian.Uint16(buf[offset:]))
		offset += 2
	case 127:
		if len(buf) < offset+8 {
			return nil, 0
		}
		length = binary.BigEndian.Uint64(buf[offset:])
		offset += 8
	}
	if length > maxPayload {
		return nil, 0
	}

	var mask []byte
	if masked {
		if len(buf) < offset+4 {
			return nil, 0
		}
		mask = buf[offset : offset+4]
		offset += 4
	}

	total := offset + int(length)
	if len(buf) < total {
		return nil, 0
	}

	payload := make([]byte, length)
	copy(payload, buf[offset:total])
	if masked {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return &Frame{Opcode: opcode, Payload: payload}, total
}

// EncodeFrame builds a server-to-client frame. Server frames are never
// masked; only the client masks, per protocol.
func EncodeFrame(op Opcode, payload []byte) []byte {
	header := make([]byte, 2, 10)
	header[0] = 0x80 | byte(op)

	switch {
	case len(payload) <= 125:
		header[1] = byte(len(payload))
	case len(payload) <= 65535:
		header[1] = 126
		header = header[:4]
		binary.BigEndian.PutUint16(header[2:], uint16(len(payload)))
	default:
		header[1] = 127
		header = header[:10]
		binary.BigEndian.PutUint64(header[2:], uint64(len(payload)))
	}

	return append(header, payload...)
}

// pongFrame is the minimal no-payload reply to a ping.
func pongFrame() []byte {
	return EncodeFrame(OpPong, nil)
}

// emptyTextFrame stands in when envelope encoding fails.
func emptyTextFrame() []byte {
	return EncodeFrame(OpText, nil)
}
