package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var errInvalidStatus = errors.New("status response length out of range")

// Result is the outcome of a single probe. Unreachable (timeout, refused
// connection, protocol garbage) is a value, not an error: the caller already
// knows whether the underlying instance is powered, so "host up, service
// down" and "host down" don't need to be distinguished here.
type Result struct {
	Online      bool
	Players     []string
	OnlineCount int
	MaxPlayers  int

	// Raw is the status JSON exactly as the server sent it.
	Raw []byte
}

type Prober interface {
	Ping(ctx context.Context, addr string, port int) (Result, error)
}

// SLPProber speaks the Minecraft server list ping protocol: a handshake
// declaring the status next-state, a status request, and a JSON response
// carrying the player sample.
type SLPProber struct {
	Timeout time.Duration
}

func NewSLPProber(timeout time.Duration) *SLPProber {
	return &SLPProber{Timeout: timeout}
}

// Ping never blocks past the configured timeout (or the context deadline,
// whichever comes first). Repeated probes are independent; there is no
// retry here, the polling interval is the retry cadence.
func (p *SLPProber) Ping(ctx context.Context, addr string, port int) (Result, error) {
	deadline := time.Now().Add(p.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(addr, strconv.Itoa(port)))
	if err != nil {
		return Result{}, nil
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(deadline); err != nil {
		return Result{}, nil
	}

	raw, err := p.exchange(conn, addr, port)
	if err != nil {
		logrus.WithError(err).Debugf("probe of %s:%d failed", addr, port)
		return Result{}, nil
	}

	var status statusPayload
	if err := json.Unmarshal(raw, &status); err != nil {
		logrus.WithError(err).Debugf("probe of %s:%d returned unparseable status", addr, port)
		return Result{}, nil
	}

	result := Result{
		Online:      true,
		OnlineCount: status.Players.Online,
		MaxPlayers:  status.Players.Max,
		Raw:         raw,
	}
	for _, sample := range status.Players.Sample {
		if sample.Name != "" {
			result.Players = append(result.Players, sample.Name)
		}
	}
	return result, nil
}

func (p *SLPProber) exchange(conn net.Conn, addr string, port int) ([]byte, error) {
	// Handshake: protocol version -1 (status ping doesn't care), server
	// address, port, next-state 1 (status).
	payload := appendVarInt(nil, -1)
	payload = appendString(payload, addr)
	payload = binary.BigEndian.AppendUint16(payload, uint16(port))
	payload = appendVarInt(payload, 1)
	if err := writePacket(conn, 0x00, payload); err != nil {
		return nil, err
	}

	// Status request: empty packet 0x00.
	if err := writePacket(conn, 0x00, nil); err != nil {
		return nil, err
	}

	// Status response: packet 0x00 carrying one JSON string.
	r := bufio.NewReader(conn)
	body, err := readPacket(r, 0x00)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(bytes.NewReader(body))
	strLen, err := readVarInt(br)
	if err != nil {
		return nil, err
	}
	if strLen < 0 || int(strLen) > len(body) {
		return nil, errInvalidStatus
	}
	raw := make([]byte, strLen)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

type statusPayload struct {
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
		Sample []struct {
			Name string `json:"name"`
		} `json:"sample"`
	} `json:"players"`
}
