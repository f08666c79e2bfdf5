package option

import (
	"fmt"

	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/lib/types"
)

type UpstreamOption struct {
	Type         string             `config:"type"`
	Address      string             `config:"address"`
	QueryTimeout types.TimeDuration `config:"query_timeout"`
	DialerOption DialerOption       `config:"dialer"`
	TLSOption    TLSOption          `config:"tls"`
	// https only
	URL    types.URL         `config:"url"`
	Header map[string]string `config:"header"`
	UseH3  bool              `config:"use_h3"`
	// system only
	ResolvConf string `config:"resolv_conf"`
	// dig only
	DigPath string `config:"dig_path"`
}

type DialerOption struct {
	Timeout       types.TimeDuration `config:"timeout"`
	SoMark        uint32             `config:"so_mark"`
	BindInterface string             `config:"bind_interface"`
	BindIP        types.Addr         `config:"bind_ip"`
	Socks5        *Socks5Option      `config:"socks5"`
}

type Socks5Option struct {
	Address  string `config:"address"`
	Username string `config:"username"`
	Password string `config:"password"`
}

type TLSOption struct {
	ServerName         string `config:"server_name"`
	InsecureSkipVerify bool   `config:"insecure_skip_verify"`
	CAFile             string `config:"ca_file"`
	ClientCertFile     string `config:"client_cert_file"`
	ClientKeyFile      string `config:"client_key_file"`
}

func (u UpstreamOption) Validate() error {
	switch u.Type {
	case constant.UpstreamSystem, constant.UpstreamDig:
	case constant.UpstreamUDP, constant.UpstreamTCP, constant.UpstreamTLS, constant.UpstreamQUIC:
		if u.Address == "" {
			return fmt.Errorf("%s upstream needs an address", u.Type)
		}
	case constant.UpstreamHTTPS:
		if u.URL.IsZero() {
			return fmt.Errorf("https upstream needs an url")
		}
	default:
		return fmt.Errorf("unknown upstream type: %s", u.Type)
	}
	if u.QueryTimeout < 0 {
		return fmt.Errorf("query timeout is negative")
	}
	if (u.TLSOption.ClientCertFile == "") != (u.TLSOption.ClientKeyFile == "") {
		return fmt.Errorf("client_cert_file and client_key_file must be set together")
	}
	return nil
}
