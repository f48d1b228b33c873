package httpc

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/loykin/apiscope/pkg/config"
)

// buildTLSConfig turns SSL settings into a client TLS config.
// Key and trust stores are PEM files: the key store holds a certificate chain
// and its private key, the trust store a CA bundle. A trust store takes
// precedence over trust-all.
func buildTLSConfig(s config.SSLSettings) (*tls.Config, error) {
	minVersion, maxVersion, ok := config.TLSVersions(s.Algorithm)
	if !ok {
		return nil, fmt.Errorf("httpc: unsupported ssl algorithm %q", s.Algorithm)
	}
	cfg := &tls.Config{MinVersion: minVersion, MaxVersion: maxVersion}

	if s.TrustStore != "" {
		pool, err := loadTrustStore(s.TrustStore)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	} else if s.TrustAll {
		cfg.InsecureSkipVerify = true //nolint:gosec // explicitly requested via ssl.trustAll
	}

	if s.KeyStore != "" {
		cert, err := loadKeyStore(s.KeyStore)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

func loadTrustStore(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("httpc: read trust store: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("httpc: trust store %s contains no PEM certificates", path)
	}
	return pool, nil
}

func loadKeyStore(path string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("httpc: read key store: %w", err)
	}
	cert, err := tls.X509KeyPair(data, data)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("httpc: load key store %s: %w", path, err)
	}
	return cert, nil
}
