package notify

import (
	"fmt"
	"strings"

	"bookverse/internal/models"
)

var statusMessages = map[string]string{
	models.OrderStatusConfirmed:  "Your order has been confirmed successfully.",
	models.OrderStatusDispatched: "Your order has been dispatched.",
	models.OrderStatusOnTheWay:   "Your order is on the way.",
	models.OrderStatusDelivered:  "Your order has been delivered.",
}

// OrderStatusMail is the generic fulfillment-progress mail sent when an
// admin moves an order along the delivery chain.
func OrderStatusMail(status, name, orderID string) (subject, body string) {
	subject = fmt.Sprintf("Order %s - BookVerse", status)
	body = fmt.Sprintf(`<h3>Order Update - BookVerse</h3>
<p>Hello %s,</p>
<p>%s</p>
<p><strong>Order ID:</strong> %s</p>
<p>Thank you for shopping with BookVerse.</p>`, name, statusMessages[status], orderID)
	return subject, body
}

// PaymentConfirmedMail confirms a paid order. Soft-copy orders include
// one download link per resolved artifact.
func PaymentConfirmedMail(name, orderID string, artifacts []models.Artifact) (subject, body string) {
	subject = "Payment Received - BookVerse"

	var b strings.Builder
	fmt.Fprintf(&b, `<h3>Payment Received - BookVerse</h3>
<p>Hello %s,</p>
<p>Your payment was received and your order is confirmed.</p>
<p><strong>Order ID:</strong> %s</p>`, name, orderID)

	if len(artifacts) > 0 {
		b.WriteString("<p>Your downloads:</p><ul>")
		for _, a := range artifacts {
			fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, a.URL, a.Name)
		}
		b.WriteString("</ul>")
	}
	b.WriteString("<p>Thank you for shopping with BookVerse.</p>")
	return subject, b.String()
}

// CancellationMail summarizes refund eligibility after a cancellation.
func CancellationMail(name, orderID string, refundInitiated bool) (subject, body string) {
	subject = "Order Cancelled - BookVerse"

	refundLine := "Digital purchases are non-refundable, so no refund applies to this order."
	if refundInitiated {
		refundLine = "A refund has been initiated and will reach your account shortly."
	}
	body = fmt.Sprintf(`<h3>Order Cancelled - BookVerse</h3>
<p>Hello %s,</p>
<p>Your order has been cancelled.</p>
<p><strong>Order ID:</strong> %s</p>
<p>%s</p>`, name, orderID, refundLine)
	return subject, body
}

// OTPMail carries a password-reset code, valid for ten minutes.
func OTPMail(otp string, resend bool) (subject, body string) {
	subject = "BookVerse OTP"
	if resend {
		subject = "New BookVerse OTP"
	}
	body = fmt.Sprintf("<h3>Your OTP: %s</h3><p>Valid for 10 minutes</p>", otp)
	return subject, body
}

// ContactMail forwards a contact-form submission to the admin inbox.
func ContactMail(msg models.ContactMessage) (subject, body string) {
	subject = "New Contact Message - BookVerse"
	bookName := msg.BookName
	if bookName == "" {
		bookName = "Not specified"
	}
	body = fmt.Sprintf(`<h3>New Contact Message</h3>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Phone:</strong> %s</p>
<p><strong>Book:</strong> %s</p>
<p><strong>Message:</strong></p>
<p>%s</p>`, msg.Name, msg.Email, msg.Phone, bookName, msg.Message)
	return subject, body
}

// ReviewMail forwards a new review to the admin inbox.
func ReviewMail(review models.Review) (subject, body string) {
	subject = "New Student Review - BookVerse"

	var b strings.Builder
	fmt.Fprintf(&b, "<h3>New Review Submitted</h3><p><strong>Name:</strong> %s</p>", review.Name)
	if review.BookName != "" {
		fmt.Fprintf(&b, "<p><strong>Book:</strong> %s</p>", review.BookName)
	}
	fmt.Fprintf(&b, "<p><strong>Review:</strong></p><p>%s</p>", review.Review)
	return subject, b.String()
}
