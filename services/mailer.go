package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"os"
	"strings"
	"tadbeer-server/models"
	"time"
)

type mailKind string

const (
	mailPaymentSubmitted mailKind = "payment_submitted"
	mailPaymentAccepted  mailKind = "payment_accepted"
	mailPaymentRejected  mailKind = "payment_rejected"
)

type mailJob struct {
	kind   mailKind
	to     string
	name   string
	amount int
	notes  string
}

// MailService renders the payment lifecycle emails and dispatches them
// through an in-process queue. Enqueueing never blocks a request and a
// delivery failure never propagates to the caller; the state change that
// triggered the email has already committed.
type MailService struct {
	jobs chan mailJob
}

var Mail *MailService

func InitializeMailer() {
	Mail = &MailService{jobs: make(chan mailJob, 64)}
	go Mail.run()
}

func (s *MailService) QueuePaymentSubmitted(user models.User, payment models.Payment) {
	s.enqueue(mailJob{kind: mailPaymentSubmitted, to: user.Email, name: user.Name, amount: payment.Amount})
}

func (s *MailService) QueuePaymentAccepted(user models.User, payment models.Payment) {
	s.enqueue(mailJob{kind: mailPaymentAccepted, to: user.Email, name: user.Name, amount: payment.Amount})
}

func (s *MailService) QueuePaymentRejected(user models.User, payment models.Payment) {
	s.enqueue(mailJob{kind: mailPaymentRejected, to: user.Email, name: user.Name, amount: payment.Amount, notes: payment.AdminNotes})
}

func (s *MailService) enqueue(job mailJob) {
	select {
	case s.jobs <- job:
	default:
		log.Printf("[MAIL] queue full, dropping %s email to %s", job.kind, job.to)
	}
}

func (s *MailService) run() {
	for job := range s.jobs {
		s.deliver(job)
	}
}

// deliver retries transient SMTP failures with backoff before giving up.
func (s *MailService) deliver(job mailJob) {
	subject, body, err := renderMail(job)
	if err != nil {
		log.Printf("[MAIL] render failed for %s: %v", job.kind, err)
		return
	}

	for attempt := 1; attempt <= 3; attempt++ {
		err = sendSMTP(job.to, subject, body)
		if err == nil {
			log.Printf("[MAIL] sent %s to %s", job.kind, job.to)
			return
		}
		log.Printf("[MAIL] attempt %d for %s to %s failed: %v", attempt, job.kind, job.to, err)
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	log.Printf("[MAIL] giving up on %s email to %s", job.kind, job.to)
}

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "payment_submitted"}}
<p>Dear {{.Name}},</p>
<p>Thank you for submitting your payment of <strong>PKR {{.Amount}}</strong>.</p>
<p><strong>Your payment is now under review by our admin team.</strong></p>
<p>Please wait for admin verification. Once your payment is approved, you will
receive an email notification and can access your dashboard.</p>
<p>Thank you for choosing Tadbeer Resource Center!</p>
{{end}}

{{define "payment_accepted"}}
<p>Dear {{.Name}},</p>
<p>Great news! Your payment of <strong>PKR {{.Amount}}</strong> has been verified.</p>
<p>Your account is now active and <strong>3 credit hours</strong> have been added
to your balance. Each application you submit uses one credit hour.</p>
<p>Welcome to Tadbeer Resource Center!</p>
{{end}}

{{define "payment_rejected"}}
<p>Dear {{.Name}},</p>
<p>Unfortunately your payment of <strong>PKR {{.Amount}}</strong> could not be verified.</p>
{{if .Notes}}<p>Admin notes: {{.Notes}}</p>{{end}}
<p>Please double-check your transfer details and submit a new screenshot, or
contact our support team for help.</p>
{{end}}
`))

var mailSubjects = map[mailKind]string{
	mailPaymentSubmitted: "Payment Submitted - Waiting for Admin Approval",
	mailPaymentAccepted:  "Payment Verified - Welcome to Tadbeer Resource Center!",
	mailPaymentRejected:  "Payment Rejected - Action Required",
}

func renderMail(job mailJob) (subject, body string, err error) {
	// Fall back to the email address when the display name is missing
	name := job.name
	if name == "" {
		name = job.to
	}

	var buf bytes.Buffer
	err = mailTemplates.ExecuteTemplate(&buf, string(job.kind), map[string]interface{}{
		"Name":   name,
		"Amount": job.amount,
		"Notes":  job.notes,
	})
	if err != nil {
		return "", "", err
	}
	return mailSubjects[job.kind], buf.String(), nil
}

func sendSMTP(to, subject, htmlBody string) error {
	host := os.Getenv("EMAIL_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("EMAIL_PORT")
	if port == "" {
		port = "587"
	}
	user := os.Getenv("EMAIL_USER")
	password := os.Getenv("EMAIL_PASSWORD")
	secure := os.Getenv("EMAIL_SECURE") == "true"
	addr := host + ":" + port

	from := user
	if from == "" {
		from = "support@tadbeerresource.com"
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %q <%s>", "Tadbeer Resource Center", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	if secure {
		conn = tls.Client(conn, &tls.Config{ServerName: host})
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if !secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
	}

	if user != "" && password != "" {
		auth := smtp.PlainAuth("", user, password, host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
