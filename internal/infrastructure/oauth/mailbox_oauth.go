package oauth

import (
	"context"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"pmr-assist-service/pkg/logger"
)

// MailboxOAuth handles OAuth authentication for the disruption mailbox
type MailboxOAuth struct {
	config       *oauth2.Config
	refreshToken string
	logger       logger.Logger
}

// NewMailboxOAuth creates a new mailbox OAuth handler
func NewMailboxOAuth(clientID, clientSecret, refreshToken string, logger logger.Logger) *MailboxOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	return &MailboxOAuth{
		config:       config,
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// GetTokenSource returns a token source for the Gmail API
func (o *MailboxOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(), // Force refresh
	}

	return o.config.TokenSource(ctx, token)
}

// GenerateAuthURL generates a URL for the user to authorize the application
func (o *MailboxOAuth) GenerateAuthURL() string {
	return o.config.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}
