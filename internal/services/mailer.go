package services

import (
	"fmt"
	"log"

	"github.com/therapytreasure/backend/internal/config"
	gomail "gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP. Sends are fire-and-forget so
// a slow or failing mail server never stalls a request.
type Mailer struct {
	dialer       *gomail.Dialer
	from         string
	frontendURL  string
	contactEmail string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer:       gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:         cfg.MailFrom,
		frontendURL:  cfg.FrontendURL,
		contactEmail: cfg.ContactEmail,
	}
}

func (m *Mailer) sendAsync(to, subject, htmlBody string) {
	go func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/html", htmlBody)

		if err := m.dialer.DialAndSend(msg); err != nil {
			log.Printf("mail send to %s failed: %v", to, err)
		}
	}()
}

// SendVerificationEmail emails the signup verification link.
func (m *Mailer) SendVerificationEmail(to, token string) {
	m.sendAsync(to, "Email Verification", verificationEmailBody(m.frontendURL, token))
}

// SendPasswordResetEmail emails the password reset link.
func (m *Mailer) SendPasswordResetEmail(to, token string) {
	m.sendAsync(to, "Reset your Therapy Treasure Password", passwordResetEmailBody(m.frontendURL, token))
}

// SendApplicationReceived confirms receipt of a therapist application.
func (m *Mailer) SendApplicationReceived(to string) {
	body := emailContainer(
		"Therapist Application Received",
		"<p>Thank you for applying to become a therapist on Therapy Treasure. Your application has been received and is under review. We will contact you via email with more information about the next steps.</p>"+
			"<p>Thanks for your interest in joining Therapy Treasure!</p>")
	m.sendAsync(to, "Your Request to Become a Therapist in Therapy Treasure", body)
}

// SendApplicationApproved notifies an applicant of approval.
func (m *Mailer) SendApplicationApproved(to string) {
	body := emailContainer(
		"Congratulations!",
		"<p>Your Therapy Treasure account has been approved.</p><p>You can now log in and enjoy our services.</p>")
	m.sendAsync(to, "Your Therapy Treasure Account Has Been Approved", body)
}

// SendApplicationRejected notifies an applicant of rejection.
func (m *Mailer) SendApplicationRejected(to string) {
	body := emailContainer(
		"Therapy Treasure Account Application",
		"<p>We regret to inform you that your Therapy Treasure account application has been rejected.</p><p>If you have any questions or concerns, please contact us.</p>")
	m.sendAsync(to, "Your Therapy Treasure Account Application", body)
}

// BookingEmail carries the appointment facts shared by the user and
// therapist notification mails.
type BookingEmail struct {
	Date            string
	Time            string
	UserName        string
	TherapistName   string
	MeetingType     string
	Platform        string
	PlatformDetails string
}

func (b BookingEmail) detailList() string {
	return fmt.Sprintf(`<ul>
<li><strong>Appointment Details</strong></li>
<li><strong>Date:</strong> %s</li>
<li><strong>Time:</strong> %s</li>
<li><strong>Meeting Type:</strong> %s</li>
<li><strong>Chosen Platform:</strong> %s</li>
<li><strong>Contact Information:</strong> %s</li>
</ul>`, b.Date, b.Time, b.MeetingType, b.Platform, b.PlatformDetails)
}

// SendBookingConfirmation emails the booking user.
func (m *Mailer) SendBookingConfirmation(to string, b BookingEmail) {
	body := emailContainer(
		"Thank you for choosing Therapy Treasure!",
		fmt.Sprintf("<h3>Dear %s,</h3><p>We are happy to report that your appointment with %s has been made successfully.</p>%s<p>Please be ready at the appointment date and time. If you wish to cancel or change your appointment, please log in to your Therapy Treasure account and follow the relevant steps.</p><p>Sincerely,<br>Therapy Treasure Team</p>",
			b.UserName, b.TherapistName, b.detailList()))
	m.sendAsync(to, "Your incoming Appointment at Therapy Treasure", body)
}

// SendBookingNotification emails the assigned therapist.
func (m *Mailer) SendBookingNotification(to string, b BookingEmail) {
	body := emailContainer(
		"You have a new appointment at Therapy Treasure!",
		fmt.Sprintf("<p>%s booked an appointment with you.</p>%s<p>Please be ready at the appointment date and time.</p><p>Sincerely,<br>Therapy Treasure Team</p>",
			b.UserName, b.detailList()))
	m.sendAsync(to, "A new therapy appointment has been scheduled with you", body)
}

// SendContactMessage relays a contact-form submission to the platform inbox.
func (m *Mailer) SendContactMessage(name, surname, email, phone, message string) {
	body := emailContainer(
		"New Contact Message",
		fmt.Sprintf("<p><strong>Name:</strong> %s %s</p><p><strong>Email:</strong> %s</p><p><strong>Phone:</strong> %s</p><p><strong>Message:</strong></p><p>%s</p>",
			name, surname, email, phone, message))
	m.sendAsync(m.contactEmail, "New Contact Message", body)
}

func verificationEmailBody(frontendURL, token string) string {
	return emailContainer(
		"Welcome to Therapy Treasure",
		fmt.Sprintf(`<p>Please click the link below to verify your email address</p>
<p style="margin:16px 0;"><a href="%s/verify-email/%s" style="color:#231942;">Verify Email</a></p>
<p>This link will expire in 1 hour.</p>`, frontendURL, token))
}

func passwordResetEmailBody(frontendURL, token string) string {
	return emailContainer(
		"We received your request",
		fmt.Sprintf(`<p>Now you can reset your password!</p>
<p style="margin:16px 0;"><a href="%s/resetpassword/%s" style="background-color:#231942;color:white;padding:14px 25px;text-decoration:none;display:inline-block;">Reset password</a></p>
<p>You have 1 hour to choose your password. After this time, you will need to request a new password.</p>
<p>Didn't ask for a new password? You can ignore this email.</p>`, frontendURL, token))
}

func emailContainer(title, inner string) string {
	return fmt.Sprintf(`<html>
<body style="font-family:Arial,sans-serif;padding:20px;">
<div style="text-align:center;padding:20px;background-color:#ffffff;max-width:600px;margin:0 auto;">
<p style="font-size:20px;"><strong>%s</strong></p>
%s
</div>
</body>
</html>`, title, inner)
}
