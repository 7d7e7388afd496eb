package service

import (
	"fmt"
	"strings"

	"stockhome/internal/config"
	"stockhome/internal/domain"
	"stockhome/internal/repository"
)

// EmailService renders and sends the buy-list change alert. It only formats
// domain objects handed to it; deciding WHETHER the list changed is the
// screener's job.
type EmailService interface {
	SendBuyListAlert(artifact *domain.RunArtifact, added, removed []string) error

	// GenerateBuyListAlert returns the subject and HTML body without
	// sending, for preview and tests.
	GenerateBuyListAlert(artifact *domain.RunArtifact, added, removed []string) (string, string, error)
}

type emailServiceHandler struct {
	EmailRepository repository.EmailRepository
	Config          config.EmailConfig
}

func NewEmailService(emailRepository repository.EmailRepository, cfg config.EmailConfig) EmailService {
	return &emailServiceHandler{
		EmailRepository: emailRepository,
		Config:          cfg,
	}
}

func (h *emailServiceHandler) SendBuyListAlert(artifact *domain.RunArtifact, added, removed []string) error {
	subject, body, err := h.GenerateBuyListAlert(artifact, added, removed)
	if err != nil {
		return err
	}
	for _, to := range h.Config.To {
		if err := h.EmailRepository.SendEmail(to, subject, body); err != nil {
			return fmt.Errorf("failed to send buy alert to %s: %w", to, err)
		}
	}
	return nil
}

func (h *emailServiceHandler) GenerateBuyListAlert(artifact *domain.RunArtifact, added, removed []string) (string, string, error) {
	if artifact == nil {
		return "", "", fmt.Errorf("nil artifact")
	}

	subject := fmt.Sprintf("Trading Signals: %d buys (%d new)", len(artifact.Buys), len(added))

	var b strings.Builder
	b.WriteString("<h2>StockHome Trading Signals</h2>")
	b.WriteString(fmt.Sprintf("<p>Generated: %s PT</p>", artifact.GeneratedAtPT))

	if len(added) > 0 {
		b.WriteString(fmt.Sprintf("<p><b>New buys:</b> %s</p>", strings.Join(added, ", ")))
	}
	if len(removed) > 0 {
		b.WriteString(fmt.Sprintf("<p><b>Dropped:</b> %s</p>", strings.Join(removed, ", ")))
	}

	b.WriteString("<table border=\"1\" cellpadding=\"4\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Ticker</th><th>Price</th><th>RSI</th><th>P/E</th><th>Mkt Cap</th><th>Put</th></tr>")
	for _, buy := range artifact.Buys {
		peStr := "N/A"
		if buy.PE != nil {
			peStr = fmt.Sprintf("%.1f", *buy.PE)
		}
		putStr := "none"
		if buy.Put != nil {
			putStr = fmt.Sprintf("$%.2f strike exp %s ($%.2f premium)", buy.Put.Strike, buy.Put.Expiration, buy.Put.Premium)
		} else if buy.PutNote != "" {
			putStr = buy.PutNote
		}
		b.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>$%.2f</td><td>%.1f</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			buy.Ticker, buy.Price, buy.RSI, peStr, buy.MarketCapStr, putStr,
		))
	}
	b.WriteString("</table>")

	if len(artifact.Sells) > 0 {
		sells := make([]string, 0, len(artifact.Sells))
		for _, s := range artifact.Sells {
			sells = append(sells, fmt.Sprintf("%s ($%.2f, RSI %.1f)", s.Ticker, s.Price, s.RSI))
		}
		b.WriteString(fmt.Sprintf("<p><b>Sells:</b> %s</p>", strings.Join(sells, ", ")))
	}

	return subject, b.String(), nil
}
