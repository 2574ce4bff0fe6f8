package netstat

import (
	"encoding/binary"
	"fmt"
	"net"
	"syscall"
)

// Netlink sock_diag wire constants. Kept local so the codec builds and is
// tested on every platform.
const (
	nlmsgHdrLen      = 16
	nlmsgError       = 2
	nlmsgDone        = 3
	sockDiagByFamily = 20
	nlmFRequest      = 0x1
	nlmFDump         = 0x300

	afInet  = 2
	afInet6 = 10

	ipprotoTCP     = 6
	tcpEstablished = 1

	inetDiagInfo   = 2
	inetDiagReqLen = 56
	inetDiagMsgLen = 72
	rtaHdrLen      = 4

	// Offsets into struct tcp_info.
	tcpiBytesAcked    = 120
	tcpiBytesReceived = 128
	tcpInfoMinLen     = 136
)

// DiagRecord is one socket from an inet_diag dump.
type DiagRecord struct {
	Family   uint8
	State    uint8
	Local    Endpoint
	Remote   Endpoint
	Counters Counters
	HasInfo  bool
}

// Key returns the connection identity of the record.
func (r DiagRecord) Key() Key {
	return Key{Protocol: TCP, Local: r.Local.String(), Remote: r.Remote.String()}
}

// EncodeInetDiagRequest builds a dump request for established TCP sockets of
// the given address family, asking for tcp_info.
func EncodeInetDiagRequest(family uint8, seq uint32) []byte {
	buf := make([]byte, nlmsgHdrLen+inetDiagReqLen)
	ne := binary.NativeEndian

	ne.PutUint32(buf[0:4], uint32(len(buf)))
	ne.PutUint16(buf[4:6], sockDiagByFamily)
	ne.PutUint16(buf[6:8], nlmFRequest|nlmFDump)
	ne.PutUint32(buf[8:12], seq)
	ne.PutUint32(buf[12:16], 0)

	req := buf[nlmsgHdrLen:]
	req[0] = family
	req[1] = ipprotoTCP
	req[2] = 1 << (inetDiagInfo - 1)
	ne.PutUint32(req[4:8], 1<<tcpEstablished)
	// socket id stays zeroed to match every socket
	return buf
}

// DecodeInetDiag parses one netlink datagram from a sock_diag dump. done is
// true once the terminating NLMSG_DONE has been seen.
func DecodeInetDiag(buf []byte) (records []DiagRecord, done bool, err error) {
	ne := binary.NativeEndian

	for len(buf) >= nlmsgHdrLen {
		msgLen := ne.Uint32(buf[0:4])
		msgType := ne.Uint16(buf[4:6])
		if msgLen < nlmsgHdrLen || int(msgLen) > len(buf) {
			return records, false, fmt.Errorf("netlink message length %d out of range", msgLen)
		}

		payload := buf[nlmsgHdrLen:msgLen]
		switch msgType {
		case nlmsgDone:
			return records, true, nil
		case nlmsgError:
			if len(payload) < 4 {
				return records, false, fmt.Errorf("truncated netlink error")
			}
			errno := int32(ne.Uint32(payload[0:4]))
			if errno == 0 {
				break
			}
			return records, false, fmt.Errorf("sock_diag: %w", syscall.Errno(-errno))
		case sockDiagByFamily:
			rec, err := decodeDiagMsg(payload)
			if err != nil {
				return records, false, err
			}
			records = append(records, rec)
		}

		next := align4(int(msgLen))
		if next >= len(buf) {
			break
		}
		buf = buf[next:]
	}
	return records, false, nil
}

func decodeDiagMsg(p []byte) (DiagRecord, error) {
	if len(p) < inetDiagMsgLen {
		return DiagRecord{}, fmt.Errorf("inet_diag message too short: %d bytes", len(p))
	}

	rec := DiagRecord{Family: p[0], State: p[1]}
	addrLen := net.IPv4len
	if rec.Family == afInet6 {
		addrLen = net.IPv6len
	}
	rec.Local = Endpoint{
		IP:   net.IP(p[8 : 8+addrLen]).String(),
		Port: uint32(binary.BigEndian.Uint16(p[4:6])),
	}
	rec.Remote = Endpoint{
		IP:   net.IP(p[24 : 24+addrLen]).String(),
		Port: uint32(binary.BigEndian.Uint16(p[6:8])),
	}

	attrs := p[inetDiagMsgLen:]
	ne := binary.NativeEndian
	for len(attrs) >= rtaHdrLen {
		rtaLen := int(ne.Uint16(attrs[0:2]))
		rtaType := ne.Uint16(attrs[2:4])
		if rtaLen < rtaHdrLen || rtaLen > len(attrs) {
			break
		}
		data := attrs[rtaHdrLen:rtaLen]
		if rtaType == inetDiagInfo && len(data) >= tcpInfoMinLen {
			rec.Counters = Counters{
				BytesIn:  ne.Uint64(data[tcpiBytesReceived : tcpiBytesReceived+8]),
				BytesOut: ne.Uint64(data[tcpiBytesAcked : tcpiBytesAcked+8]),
			}
			rec.HasInfo = true
		}
		next := align4(rtaLen)
		if next >= len(attrs) {
			break
		}
		attrs = attrs[next:]
	}
	return rec, nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}
