package probe

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Server list ping frames are length-prefixed packets of
// [varint length][varint packet id][payload].

func appendVarInt(b []byte, v int32) []byte {
	u := uint32(v)
	for {
		if u&^0x7F == 0 {
			return append(b, byte(u))
		}
		b = append(b, byte(u&0x7F|0x80))
		u >>= 7
	}
}

func readVarInt(r *bufio.Reader) (int32, error) {
	var value uint32
	var pos uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		value |= uint32(b&0x7F) << pos
		if b&0x80 == 0 {
			return int32(value), nil
		}
		pos += 7
		if pos >= 32 {
			return 0, errors.New("varint exceeds 32 bits")
		}
	}
}

func appendString(b []byte, s string) []byte {
	b = appendVarInt(b, int32(len(s)))
	return append(b, s...)
}

// writePacket frames a packet id and payload with the outer length prefix.
func writePacket(w io.Writer, packetId int32, payload []byte) error {
	body := appendVarInt(nil, packetId)
	body = append(body, payload...)

	frame := appendVarInt(nil, int32(len(body)))
	frame = append(frame, body...)

	_, err := w.Write(frame)
	return err
}

// readPacket reads one framed packet and returns its payload, with the
// packet id already consumed and verified.
func readPacket(r *bufio.Reader, expectId int32) ([]byte, error) {
	length, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if length <= 0 || length > maxPacketSize {
		return nil, errors.Errorf("invalid packet length %d", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	br := bufio.NewReader(bytes.NewReader(body))
	id, err := readVarInt(br)
	if err != nil {
		return nil, err
	}
	if id != expectId {
		return nil, errors.Errorf("unexpected packet id 0x%02x", id)
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	return rest, nil
}

const maxPacketSize = 1 << 21
