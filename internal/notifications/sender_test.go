package notifications

import (
	"errors"
	"testing"
	"time"

	"proof-of-learning-go/internal/model"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	sent []*mail.SGMailV3
	err  error
}

func (c *fakeClient) Send(email *mail.SGMailV3) (*rest.Response, error) {
	c.sent = append(c.sent, email)
	if c.err != nil {
		return nil, c.err
	}
	return &rest.Response{StatusCode: 202}, nil
}

func TestSendCertificateEmail(t *testing.T) {
	client := &fakeClient{}
	sender := NewSender(client, "no-reply@example.com")
	cert := model.Certificate{CourseName: "IOTA Fundamentals", IssuedAt: time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)}

	err := sender.SendCertificateEmail("student@example.com", cert, "https://explorer.rebased.iota.org/object/0xc?network=testnet")

	require.NoError(t, err)
	require.Len(t, client.sent, 1)
	msg := client.sent[0]
	assert.Equal(t, "Your IOTA Fundamentals certificate", msg.Subject)
	assert.Equal(t, "no-reply@example.com", msg.From.Address)
	require.Len(t, msg.Personalizations, 1)
	assert.Equal(t, "student@example.com", msg.Personalizations[0].To[0].Address)
	assert.Contains(t, msg.Content[0].Value, "explorer.rebased.iota.org")
}

func TestSendCertificateEmailError(t *testing.T) {
	sender := NewSender(&fakeClient{err: errors.New("unauthorized")}, "no-reply@example.com")

	err := sender.SendCertificateEmail("student@example.com", model.Certificate{}, "")

	assert.Error(t, err)
}
