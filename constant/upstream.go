package constant

import "time"

const (
	UpstreamSystem = "system"
	UpstreamUDP    = "udp"
	UpstreamTCP    = "tcp"
	UpstreamTLS    = "tls"
	UpstreamHTTPS  = "https"
	UpstreamQUIC   = "quic"
	UpstreamDig    = "dig"
)

const (
	NetworkTCP = "tcp"
	NetworkUDP = "udp"
)

const (
	TCPDialTimeout = 20 * time.Second
	UDPDialTimeout = 20 * time.Second
)

const DNSQueryTimeout = 10 * time.Second

const (
	ResolvConfPath = "/etc/resolv.conf"
	DigCommand     = "dig"
)
