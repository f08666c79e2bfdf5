package upstream

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/towalink/hostname2set/option"
)

func newTLSConfig(options option.TLSOption, defaultServerName string, nextProtos ...string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: options.InsecureSkipVerify,
		ServerName:         options.ServerName,
		NextProtos:         nextProtos,
	}
	if tlsConfig.ServerName == "" {
		tlsConfig.ServerName = defaultServerName
	}
	if options.ClientCertFile != "" && options.ClientKeyFile == "" {
		return nil, fmt.Errorf("client_key_file not found")
	} else if options.ClientCertFile == "" && options.ClientKeyFile != "" {
		return nil, fmt.Errorf("client_cert_file not found")
	} else if options.ClientCertFile != "" && options.ClientKeyFile != "" {
		keyPair, err := tls.LoadX509KeyPair(options.ClientCertFile, options.ClientKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load x509 key pair fail: %s", err)
		}
		tlsConfig.Certificates = []tls.Certificate{keyPair}
	}
	if options.CAFile != "" {
		caContent, err := os.ReadFile(options.CAFile)
		if err != nil {
			return nil, fmt.Errorf("load ca fail: %s", err)
		}
		tlsConfig.RootCAs = x509.NewCertPool()
		if !tlsConfig.RootCAs.AppendCertsFromPEM(caContent) {
			return nil, fmt.Errorf("append ca fail")
		}
	}
	return tlsConfig, nil
}
