package certs

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1)
	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return parsed
}

func TestGetOrCreateCertificate_Creates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tls")
	m := NewFileManager(dir, "192.168.1.20", "wall.local")

	cert, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	c := leaf(t, cert)
	assert.Equal(t, "climbr", c.Subject.Organization[0])
	require.NoError(t, c.VerifyHostname("localhost"))
	require.NoError(t, c.VerifyHostname("192.168.1.20"))
	require.NoError(t, c.VerifyHostname("wall.local"))
	assert.True(t, c.NotAfter.After(time.Now().Add(Validity-2*time.Hour)))

	info, err := os.Stat(filepath.Join(dir, "climbr.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.Equal(t, filepath.Join(dir, "climbr.crt"), m.CertFile())
}

func TestGetOrCreateCertificate_Reuses(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileManager(dir).GetOrCreateCertificate()
	require.NoError(t, err)
	second, err := NewFileManager(dir).GetOrCreateCertificate()
	require.NoError(t, err)

	assert.Equal(t, leaf(t, first).SerialNumber, leaf(t, second).SerialNumber)
}

func TestGetOrCreateCertificate_Regenerates(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, dir string) *FileManager
	}{
		{
			name: "new host",
			prepare: func(_ *testing.T, dir string) *FileManager {
				return NewFileManager(dir, "10.0.0.5")
			},
		},
		{
			name: "close to expiry",
			prepare: func(_ *testing.T, dir string) *FileManager {
				m := NewFileManager(dir)
				m.now = func() time.Time { return time.Now().Add(Validity - 24*time.Hour) }
				return m
			},
		},
		{
			name: "corrupt files",
			prepare: func(t *testing.T, dir string) *FileManager {
				t.Helper()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "climbr.crt"), []byte("junk"), 0600))
				return NewFileManager(dir)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			original, err := NewFileManager(dir).GetOrCreateCertificate()
			require.NoError(t, err)
			originalSerial := leaf(t, original).SerialNumber

			cert, err := tt.prepare(t, dir).GetOrCreateCertificate()
			require.NoError(t, err)
			assert.NotEqual(t, originalSerial, leaf(t, cert).SerialNumber)
		})
	}
}
