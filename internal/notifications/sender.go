package notifications

import (
	"fmt"

	"proof-of-learning-go/internal/model"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sendgrid/rest"
	log "github.com/sirupsen/logrus"
)

// Client is implemented by *sendgrid.Client.
type Client interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type Sender struct {
	client Client
	from   *mail.Email
}

func NewSender(client Client, fromAddress string) *Sender {
	return &Sender{
		client: client,
		from:   mail.NewEmail("Proof of Learning", fromAddress),
	}
}

// NewSendgridSender builds a Sender backed by the SendGrid API.
func NewSendgridSender(apiKey, fromAddress string) *Sender {
	return NewSender(sendgrid.NewSendClient(apiKey), fromAddress)
}

// SendCertificateEmail tells the learner a certificate was issued. explorerURL
// may be empty for certificates that only exist locally.
func (s *Sender) SendCertificateEmail(destinationEmail string, cert model.Certificate, explorerURL string) error {
	subject := fmt.Sprintf("Your %s certificate", cert.CourseName)
	to := mail.NewEmail("Learner", destinationEmail)

	plainTextContent := fmt.Sprintf("Congratulations! You completed %s on %s.", cert.CourseName, cert.IssuedAt.Format("January 2, 2006"))
	htmlContent := fmt.Sprintf("<strong>Congratulations!</strong> You completed %s.", cert.CourseName)
	if explorerURL != "" {
		plainTextContent += "\nView your NFT certificate: " + explorerURL
		htmlContent += fmt.Sprintf(` <a href="%s">View your NFT certificate</a>`, explorerURL)
	}

	message := mail.NewSingleEmail(s.from, subject, to, plainTextContent, htmlContent)
	response, err := s.client.Send(message)
	if err != nil {
		return err
	}

	if response.StatusCode != 202 {
		log.Errorf("failure sending certificate email with sendgrid: %v", response.Body)
	}

	return nil
}
