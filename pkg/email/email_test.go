package email

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmail(t *testing.T) {
	m := NewSMTPMailer("smtp.uni.test", "587", "registry@uni.test", "secret")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.SendEmail("student@uni.test", "Medical request approved", "Your request was approved."))
	assert.Equal(t, "smtp.uni.test:587", gotAddr)
	assert.Equal(t, "registry@uni.test", gotFrom)
	assert.Equal(t, []string{"student@uni.test"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Medical request approved\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\nYour request was approved.\r\n")
}

func TestSendEmailWrapsError(t *testing.T) {
	m := NewSMTPMailer("smtp.uni.test", "587", "registry@uni.test", "secret")
	relayDown := errors.New("connection refused")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return relayDown }

	err := m.SendEmail("student@uni.test", "s", "b")
	assert.ErrorIs(t, err, relayDown)
}
