package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// BaseURL is the Microsoft Graph v1.0 endpoint.
	BaseURL = "https://graph.microsoft.com/v1.0"

	tokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	defaultScope   = "https://graph.microsoft.com/.default"
)

// Client sends mail through the Microsoft Graph API. Authentication lives in
// the HTTP transport so the request path is identical for static tokens and
// client-credentials flows.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client around a caller-managed access token. The token
// is not refreshed; an expired token surfaces as *AuthError.
func NewClient(token string) *Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return newClient(source)
}

// NewClientCredentials creates a client that acquires and refreshes its own
// app-only token via the OAuth2 client-credentials grant for the tenant.
func NewClientCredentials(tenantID, clientID, clientSecret string) *Client {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf(tokenURLFormat, tenantID),
		Scopes:       []string{defaultScope},
	}
	return newClient(conf.TokenSource(context.Background()))
}

func newClient(source oauth2.TokenSource) *Client {
	return &Client{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Transport: &oauth2.Transport{Source: source},
			Timeout:   30 * time.Second,
		},
	}
}

// SetBaseURL overrides the Graph endpoint, for tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SendMail sends an HTML message from the given mailbox with optional
// attachments and CC list. It returns *AuthError on 401/403, *APIError on
// any other non-success status, and never retries.
func (c *Client) SendMail(ctx context.Context, senderEmail string, toEmails []string,
	subject, htmlBody string, attachments []Attachment, ccEmails []string) (*SendResult, error) {

	payload := sendMailRequest{
		Message: message{
			Subject:      subject,
			Body:         itemBody{ContentType: "HTML", Content: htmlBody},
			ToRecipients: toRecipients(toEmails),
			CcRecipients: toRecipients(ccEmails),
			Attachments:  toAttachments(attachments),
		},
		SaveToSentItems: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal sendMail payload: %w", err)
	}

	url := fmt.Sprintf("%s/users/%s/sendMail", c.baseURL, senderEmail)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: string(respBody)}
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return &SendResult{StatusCode: resp.StatusCode}, nil
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
}

func toRecipients(emails []string) []recipient {
	out := make([]recipient, 0, len(emails))
	for _, e := range emails {
		out = append(out, recipient{EmailAddress: emailAddress{Address: e}})
	}
	return out
}

func toAttachments(attachments []Attachment) []fileAttachment {
	out := make([]fileAttachment, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, fileAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         a.Name,
			ContentType:  a.ContentType,
			ContentBytes: a.ContentBytes,
		})
	}
	return out
}
