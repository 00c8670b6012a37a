package mailer

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPSender(t *testing.T) {
	tests := []struct {
		name       string
		port       int
		tls        bool
		wantAddr   string
		wantPolicy string
	}{
		{"plain port 25", 25, false, "smtp.example.com:25", "NoTLS"},
		{"starttls port 25", 25, true, "smtp.example.com:25", "TLSMandatory"},
		{"starttls port 587", 587, true, "smtp.example.com:587", "TLSMandatory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSMTPSender(SMTPConfig{
				Host:      "smtp.example.com",
				Port:      tt.port,
				TLS:       tt.tls,
				FromEmail: "noreply@example.com",
			}, slog.Default())
			require.NoError(t, err)

			client, err := s.newClient()
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, client.ServerAddr())
			assert.Equal(t, tt.wantPolicy, client.TLSPolicy())
		})
	}

	t.Run("invalid port", func(t *testing.T) {
		_, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 0}, slog.Default())
		assert.Error(t, err)
	})
}
