// Package mail delivers transactional email over SMTP.
package mail

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"
)

// Client sends email from a preset address. When SMTP credentials are
// missing the client is disabled and sends become logged no-ops, so a local
// deployment can run without a mail account.
type Client struct {
	smtp        *goemail.SMTP
	fromName    string
	fromAddress string
	disabled    bool
	logger      *slog.Logger
}

// NewClient constructs an SMTP client. host is "host:port".
func NewClient(host, user, password, fromAddress string, skipVerify bool, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if host == "" || user == "" || password == "" {
		logger.Info("mail delivery disabled, smtp credentials not configured")
		return &Client{disabled: true, logger: logger}, nil
	}

	u, err := url.Parse(fmt.Sprintf("smtps://%s:%s@%s", url.QueryEscape(user), url.QueryEscape(password), host))
	if err != nil {
		return nil, fmt.Errorf("mail: parse smtp host: %w", err)
	}

	from, err := mail.ParseAddress(fromAddress)
	if err != nil {
		return nil, fmt.Errorf("mail: parse from address: %w", err)
	}

	smtp, err := goemail.NewSMTP(u.String(), &tls.Config{
		InsecureSkipVerify: skipVerify, //nolint:gosec
	})
	if err != nil {
		return nil, fmt.Errorf("mail: smtp setup: %w", err)
	}

	return &Client{
		smtp:        smtp,
		fromName:    from.Name,
		fromAddress: from.Address,
		logger:      logger,
	}, nil
}

// IsEnabled reports whether the client will actually deliver mail.
func (c *Client) IsEnabled() bool {
	return !c.disabled
}

// Send delivers a plain text message to a single recipient.
func (c *Client) Send(to, subject, body string) error {
	if c.disabled {
		c.logger.Info("mail delivery skipped", slog.String("to", to), slog.String("subject", subject))
		return nil
	}
	msg := goemail.NewMessage(c.fromAddress, subject, body)
	msg.SetName(c.fromName)
	msg.AddTo(to)
	return c.smtp.Send(msg)
}
