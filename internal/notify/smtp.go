package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/skip2/go-qrcode"

	"gatepass/internal/platform/config"
)

// SMTPSender sends confirmation email over plain SMTP with the token QR code
// embedded inline.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, logger *slog.Logger) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and from address are required")
	}
	return &SMTPSender{cfg: cfg, logger: logger}, nil
}

func (s *SMTPSender) SendConfirmation(ctx context.Context, c Confirmation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := buildMessage(s.cfg.From, c)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{c.To}, msg); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	s.logger.Info("confirmation email sent", "identifier", c.Identifier)
	return nil
}

// buildMessage assembles a multipart/related MIME message with a text body
// and the QR PNG referenced by content id.
func buildMessage(from string, c Confirmation) ([]byte, error) {
	png, err := qrcode.Encode(c.Token, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode token qr: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", c.To)
	fmt.Fprintf(&buf, "Subject: Your registration for %s\r\n", c.EventTitle)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/related; boundary=%q\r\n\r\n", w.Boundary())

	text, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(text, "Your registration for %s is confirmed.\r\n\r\n", c.EventTitle)
	fmt.Fprintf(text, "Registration identifier: %s\r\n", c.Identifier)
	if len(c.Participants) > 0 {
		fmt.Fprintf(text, "Participants: %s\r\n", strings.Join(c.Participants, ", "))
	}
	fmt.Fprintf(text, "\r\nPresent the attached QR code at check-in.\r\n")

	img, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"image/png"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-ID":                {"<checkin-qr>"},
		"Content-Disposition":       {`inline; filename="checkin-qr.png"`},
	})
	if err != nil {
		return nil, err
	}
	enc := base64.NewEncoder(base64.StdEncoding, img)
	if _, err := enc.Write(png); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
