package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AzielCF/az-remind/domains/reminder"
	pkgError "github.com/AzielCF/az-remind/pkg/error"
	"github.com/sirupsen/logrus"
)

// GatewayNotifier delivers chat reminders through an az-wap style HTTP
// gateway that owns the WhatsApp session. The engine never speaks the
// WhatsApp protocol itself.
type GatewayNotifier struct {
	endpoint  string
	basicAuth string // user:password, may be empty
	client    *http.Client
}

func NewGatewayNotifier(endpoint, basicAuth string) *GatewayNotifier {
	return &GatewayNotifier{
		endpoint:  strings.TrimRight(endpoint, "/"),
		basicAuth: basicAuth,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *GatewayNotifier) Kind() reminder.ChannelKind {
	return reminder.ChannelWhatsApp
}

// Send posts {phone, message} to the gateway's send endpoint. Subject is
// ignored; chat messages have no subject line.
func (n *GatewayNotifier) Send(ctx context.Context, address, _ string, body string) error {
	if n.endpoint == "" {
		return pkgError.NotifierError("whatsapp gateway not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"phone":   address,
		"message": body,
	})
	if err != nil {
		return pkgError.NotifierError(fmt.Sprintf("failed to marshal payload: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint+"/send/message", bytes.NewReader(payload))
	if err != nil {
		return pkgError.NotifierError(fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if n.basicAuth != "" {
		if user, pass, ok := strings.Cut(n.basicAuth, ":"); ok {
			req.SetBasicAuth(user, pass)
		}
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return pkgError.NotifierError(fmt.Sprintf("gateway unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		logrus.Debugf("[WHATSAPP] Gateway rejected send: %s", string(snippet))
		return pkgError.NotifierError(fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}
	return nil
}
