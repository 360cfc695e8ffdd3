package graph

import "fmt"

// Attachment is a file attached to an outgoing message. ContentBytes is the
// base64-encoded payload, as the Graph API expects.
type Attachment struct {
	Name         string
	ContentType  string
	ContentBytes string
}

// SendResult reports a successful dispatch.
type SendResult struct {
	StatusCode int
}

// AuthError means Graph rejected the credentials (401/403). Callers should
// refresh credentials before retrying; retrying with the same token will
// fail the same way.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("graph auth error: %d %s", e.StatusCode, e.Body)
}

// APIError is any non-auth delivery failure. Retry policy is the caller's.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph sendMail failed: %d %s", e.StatusCode, e.Body)
}

// sendMailRequest mirrors the Graph sendMail payload.
type sendMailRequest struct {
	Message         message `json:"message"`
	SaveToSentItems bool    `json:"saveToSentItems"`
}

type message struct {
	Subject      string           `json:"subject"`
	Body         itemBody         `json:"body"`
	ToRecipients []recipient      `json:"toRecipients"`
	CcRecipients []recipient      `json:"ccRecipients"`
	Attachments  []fileAttachment `json:"attachments"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type fileAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}
