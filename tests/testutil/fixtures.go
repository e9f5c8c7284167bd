package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"path/filepath"
	"testing"
	"time"
)

// NewClientCertificate creates a self-signed ECDSA client certificate
// valid for one hour.
func NewClientCertificate(t *testing.T, commonName string) tls.Certificate {
	t.Helper()

	certPEM, keyPEM := newCertificatePEM(t, commonName)
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("Failed to parse generated key pair: %v", err)
	}
	return cert
}

// WriteCertificatePair writes a fresh client certificate and key as PEM
// files in a temporary directory and returns their paths.
func WriteCertificatePair(t *testing.T, commonName string) (certPath, keyPath string) {
	t.Helper()

	certPEM, keyPEM := newCertificatePEM(t, commonName)
	dir := t.TempDir()
	certPath = writeFile(t, filepath.Join(dir, "client.crt"), certPEM)
	keyPath = writeFile(t, filepath.Join(dir, "client.key"), keyPEM)
	return certPath, keyPath
}

func newCertificatePEM(t *testing.T, commonName string) (certPEM, keyPEM []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("Failed to marshal key: %v", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM
}
