package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendProtocolComplete(toEmail, diagnostico string, sessoes int) error
	SendAccessExpiring(toEmail string, daysLeft int) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendProtocolComplete is fired best-effort when the final session of a
// protocol is finalized.
func (s *emailService) SendProtocolComplete(toEmail, diagnostico string, sessoes int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Protocolo concluído")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Parabéns!</h2>
			<p>Você concluiu todas as %d sessões do protocolo de <strong>%s</strong>.</p>
			<p>As revisões de cada sessão estão disponíveis na plataforma.</p>
		</div>
	`, sessoes, diagnostico)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send protocol-complete to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Protocol-complete sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendAccessExpiring(toEmail string, daysLeft int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Seu acesso está expirando")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Aviso de expiração</h2>
			<p>Seu acesso à plataforma expira em %d dia(s).</p>
			<p>Entre em contato para renovar.</p>
		</div>
	`, daysLeft)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send access-expiring to %s: %v\n", toEmail, err)
		return err
	}

	return nil
}
