package upstream

import (
	"net"
)

// packetConn turns a connected datagram conn into a net.PacketConn, which
// both dns.Conn (no length prefix) and quic-go expect.
type packetConn struct {
	net.Conn
}

func newPacketConn(conn net.Conn) *packetConn {
	if pc, ok := conn.(*packetConn); ok {
		return pc
	}
	return &packetConn{
		Conn: conn,
	}
}

func (p *packetConn) ReadFrom(b []byte) (n int, addr net.Addr, err error) {
	n, err = p.Conn.Read(b)
	return n, p.Conn.RemoteAddr(), err
}

func (p *packetConn) WriteTo(b []byte, _ net.Addr) (n int, err error) {
	return p.Conn.Write(b)
}
