package email

import (
	"fmt"
	"strings"
)

// DefaultRejectionReason is used when an admin rejects without a reason.
const DefaultRejectionReason = "does not meet our current requirements"

const (
	SubjectApproved      = "Your Registration Has Been Approved"
	SubjectRejected      = "Your Registration Request Status"
	SubjectPasswordReset = "Password Reset Request"
)

// ApprovalData fills the approval notification.
type ApprovalData struct {
	Name              string
	Email             string
	TemporaryPassword string
	StudentID         string
	LoginURL          string
}

// ApprovalMessage builds the email carrying the temporary password.
func ApprovalMessage(d ApprovalData) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", d.Name)
	b.WriteString("Your registration request has been approved. You can now sign in with the credentials below.\n\n")
	fmt.Fprintf(&b, "Email: %s\n", d.Email)
	fmt.Fprintf(&b, "Temporary password: %s\n", d.TemporaryPassword)
	if d.StudentID != "" {
		fmt.Fprintf(&b, "Student ID: %s\n", d.StudentID)
	}
	fmt.Fprintf(&b, "\nLogin here: %s\n\n", d.LoginURL)
	b.WriteString("Please change your password after your first login.\n")
	return Message{To: []string{d.Email}, Subject: SubjectApproved, Body: b.String()}
}

// RejectionMessage builds the rejection notification.
func RejectionMessage(name, to, reason string) Message {
	if strings.TrimSpace(reason) == "" {
		reason = DefaultRejectionReason
	}
	body := fmt.Sprintf("Dear %s,\n\nYour registration request has been rejected. Reason: %s\n", name, reason)
	return Message{To: []string{to}, Subject: SubjectRejected, Body: body}
}

// RequestSummary is what the administrator notification reports.
type RequestSummary struct {
	Name    string
	Email   string
	Phone   string
	Role    string
	Message string
}

// AdminNotificationMessage tells the administrator mailbox about a new request.
func AdminNotificationMessage(adminEmail string, r RequestSummary) Message {
	title := r.Role
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:]
	}
	var b strings.Builder
	b.WriteString("A new registration request has been submitted:\n\n")
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\nRole: %s\n\n", r.Name, r.Email, r.Phone, r.Role)
	fmt.Fprintf(&b, "Message:\n%s\n\n", r.Message)
	b.WriteString("Please review this request in the admin dashboard.\n")
	return Message{
		To:      []string{adminEmail},
		Subject: "New Registration Request: " + title,
		Body:    b.String(),
	}
}

// PasswordResetMessage carries a password reset link.
func PasswordResetMessage(to, name, resetURL string) Message {
	body := fmt.Sprintf("Hello %s,\n\nWe received a request to reset your password. Use the link below within one hour:\n\n%s\n\nIf you did not request this, you can ignore this email.\n", name, resetURL)
	return Message{To: []string{to}, Subject: SubjectPasswordReset, Body: body}
}
