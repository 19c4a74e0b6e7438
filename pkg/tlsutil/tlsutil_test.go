package tlsutil

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateSelfSignedCert([]string{"localhost", "127.0.0.1"}, dir))

	serverCreds, err := ServerTLSConfig(filepath.Join(dir, "server.pem"), filepath.Join(dir, "server-key.pem"))
	require.NoError(t, err)
	assert.Equal(t, "tls", serverCreds.Info().SecurityProtocol)

	clientCreds, err := ClientTLSConfig(filepath.Join(dir, "ca.pem"))
	require.NoError(t, err)
	assert.Equal(t, "tls", clientCreds.Info().SecurityProtocol)
}

func TestServerTLSConfig_MissingFiles(t *testing.T) {
	_, err := ServerTLSConfig("/nonexistent/cert.pem", "/nonexistent/key.pem")
	require.Error(t, err)
}

func TestClientTLSConfig_BadCA(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateSelfSignedCert([]string{"localhost"}, dir))

	_, err := ClientTLSConfig(filepath.Join(dir, "ca-key.pem"))
	require.Error(t, err)
}

func TestGenerateSelfSignedCert_ChainsToCA(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateSelfSignedCert([]string{"localhost", "127.0.0.1"}, dir))

	ca := readCert(t, filepath.Join(dir, "ca.pem"))
	server := readCert(t, filepath.Join(dir, "server.pem"))
	assert.True(t, ca.IsCA)
	assert.Equal(t, []string{"localhost"}, server.DNSNames)
	require.Len(t, server.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", server.IPAddresses[0].String())

	roots := x509.NewCertPool()
	roots.AddCert(ca)
	_, err := server.Verify(x509.VerifyOptions{DNSName: "localhost", Roots: roots})
	require.NoError(t, err)
}

func TestClientTLSConfig_SystemPool(t *testing.T) {
	creds, err := ClientTLSConfig("")
	require.NoError(t, err)
	assert.Equal(t, "tls", creds.Info().SecurityProtocol)
}

func readCert(t *testing.T, path string) *x509.Certificate {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	block, _ := pem.Decode(data)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	return cert
}
