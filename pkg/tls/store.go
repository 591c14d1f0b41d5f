package tls

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the certificate and key as PEM files. The key file is
// readable by the owner only.
func Save(cert *Certificate, certPath, keyPath string) error {
	if cert == nil {
		return errors.New("certificate cannot be nil")
	}
	for _, dir := range []string{filepath.Dir(certPath), filepath.Dir(keyPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(certPath, cert.CertPEM, 0o644); err != nil {
		return fmt.Errorf("failed to write certificate file: %w", err)
	}
	if err := os.WriteFile(keyPath, cert.KeyPEM, 0o600); err != nil {
		_ = os.Remove(certPath)
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// Load reads a certificate and key pair from PEM files.
func Load(certPath, keyPath string) (*Certificate, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate file: %w", err)
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return ParsePEM(certPEM, keyPEM)
}

// Ensure loads the pair at certPath and keyPath. When generate is set and
// neither file exists, a self-signed pair is created and saved there first.
// It reports whether the pair was generated.
func Ensure(opts Options, certPath, keyPath string, generate bool) (*Certificate, bool, error) {
	_, certErr := os.Stat(certPath)
	_, keyErr := os.Stat(keyPath)
	if !generate || certErr == nil || keyErr == nil {
		cert, err := Load(certPath, keyPath)
		return cert, false, err
	}

	cert, err := GenerateSelfSigned(opts)
	if err != nil {
		return nil, false, err
	}
	if err := Save(cert, certPath, keyPath); err != nil {
		return nil, false, err
	}
	return cert, true, nil
}

// ServerConfig returns a TLS 1.2+ server configuration presenting cert.
func (c *Certificate) ServerConfig() (*tls.Config, error) {
	pair, err := tls.X509KeyPair(c.CertPEM, c.KeyPEM)
	if err != nil {
		return nil, fmt.Errorf("invalid key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{pair},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
