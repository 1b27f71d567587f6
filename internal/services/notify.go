package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/pkg/logger"
	"gorm.io/gorm"
)

// NotifyService sends lifecycle emails to volunteers: swap outcomes
// and upcoming-shift reminders. Delivery settings live in
// organization settings, so admins can change them without a restart.
type NotifyService struct {
	db       *gorm.DB
	settings *SettingsService
	baseURL  string
}

func NewNotifyService(db *gorm.DB, settings *SettingsService, baseURL string) *NotifyService {
	return &NotifyService{db: db, settings: settings, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// SwapCreated mails the requester their share link so they have it on
// record and can pass it on.
func (s *NotifyService) SwapCreated(requestID uint) error {
	var request models.SwapRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		return err
	}

	var requester models.Profile
	if err := s.db.First(&requester, request.RequesterID).Error; err != nil {
		return err
	}
	if requester.Email == "" {
		return nil
	}

	shift, err := s.describeAssignment(request.AssignmentID)
	if err != nil {
		return err
	}

	orgName := s.settings.GetWithDefault("org_name", "VolunTy")
	subject := fmt.Sprintf("[%s] Your shift swap request is open", orgName)
	body := s.buildBody("Swap request created", []bodyRow{
		{"Shift", shift},
		{"Share link", s.baseURL + "/swap-requests/" + request.ShareToken},
	}, "Send the link to anyone who can cover the shift. Your seat is held until someone accepts or you cancel.")

	return s.send([]string{requester.Email}, subject, body)
}

// SwapAccepted tells the original requester who took over the shift.
func (s *NotifyService) SwapAccepted(requestID uint) error {
	var request models.SwapRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		return err
	}

	var requester models.Profile
	if err := s.db.First(&requester, request.RequesterID).Error; err != nil {
		return err
	}
	if requester.Email == "" {
		return nil
	}

	acceptorName := "another volunteer"
	if request.AcceptedByID != nil {
		var acceptor models.Profile
		if err := s.db.First(&acceptor, *request.AcceptedByID).Error; err == nil {
			acceptorName = acceptor.FullName
		}
	}

	shift, err := s.describeAssignment(request.AssignmentID)
	if err != nil {
		return err
	}

	orgName := s.settings.GetWithDefault("org_name", "VolunTy")
	subject := fmt.Sprintf("[%s] Your shift swap was accepted", orgName)
	body := s.buildBody("Swap accepted", []bodyRow{
		{"Shift", shift},
		{"Taken over by", acceptorName},
	}, "Your shift has been handed over. You no longer need to attend.")

	return s.send([]string{requester.Email}, subject, body)
}

// SwapCancelled tells the requester their offer was declined or
// withdrawn and the shift is theirs again.
func (s *NotifyService) SwapCancelled(requestID uint) error {
	var request models.SwapRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		return err
	}

	var requester models.Profile
	if err := s.db.First(&requester, request.RequesterID).Error; err != nil {
		return err
	}
	if requester.Email == "" {
		return nil
	}

	shift, err := s.describeAssignment(request.AssignmentID)
	if err != nil {
		return err
	}

	orgName := s.settings.GetWithDefault("org_name", "VolunTy")
	subject := fmt.Sprintf("[%s] Your shift swap was cancelled", orgName)
	body := s.buildBody("Swap cancelled", []bodyRow{
		{"Shift", shift},
	}, "The swap request is closed and the shift is back on your schedule.")

	return s.send([]string{requester.Email}, subject, body)
}

// ShiftReminder mails a volunteer their shifts for one day.
func (s *NotifyService) ShiftReminder(userID uint, day time.Time, shifts []AssignmentView) error {
	if len(shifts) == 0 {
		return nil
	}

	var profile models.Profile
	if err := s.db.First(&profile, userID).Error; err != nil {
		return err
	}
	if profile.Email == "" {
		return nil
	}

	orgName := s.settings.GetWithDefault("org_name", "VolunTy")
	subject := fmt.Sprintf("[%s] Shift reminder for %s", orgName, day.Format("Mon 2 Jan"))

	rows := make([]bodyRow, 0, len(shifts))
	for _, a := range shifts {
		start, end := a.EventStartTime, a.EventEndTime
		if a.StartTime != nil {
			start = *a.StartTime
		}
		if a.EndTime != nil {
			end = *a.EndTime
		}
		rows = append(rows, bodyRow{
			label: fmt.Sprintf("%s (%s)", a.EventTitle, a.RoleName),
			value: fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04")),
		})
	}

	body := s.buildBody("Upcoming shifts", rows, "See you there!")
	return s.send([]string{profile.Email}, subject, body)
}

func (s *NotifyService) describeAssignment(assignmentID uint) (string, error) {
	var assignment models.ShiftAssignment
	if err := s.db.First(&assignment, assignmentID).Error; err != nil {
		return "", err
	}
	var shift models.SubShift
	if err := s.db.First(&shift, assignment.SubShiftID).Error; err != nil {
		return "", err
	}
	var event models.Event
	if err := s.db.First(&event, shift.EventID).Error; err != nil {
		return "", err
	}
	start, end := shift.EffectiveWindow(&event)
	return fmt.Sprintf("%s, %s (%s - %s)",
		event.Title, shift.RoleName,
		start.Format("Mon 2 Jan 15:04"), end.Format("15:04")), nil
}

type bodyRow struct {
	label string
	value string
}

func (s *NotifyService) buildBody(heading string, rows []bodyRow, footer string) string {
	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>%s</h2>", heading))
	sb.WriteString("<table style=\"border-collapse: collapse; margin-bottom: 20px;\">")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("<tr><td style=\"padding: 8px; border: 1px solid #ddd; font-weight: bold;\">%s</td><td style=\"padding: 8px; border: 1px solid #ddd;\">%s</td></tr>", r.label, r.value))
	}
	sb.WriteString("</table>")
	if footer != "" {
		sb.WriteString(fmt.Sprintf("<p>%s</p>", footer))
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func (s *NotifyService) send(to []string, subject, body string) error {
	cfg := s.settings.EmailConfig()
	if !cfg.Enabled || cfg.Host == "" || len(to) == 0 {
		return nil
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	headers := map[string]string{
		"From":         from,
		"To":           strings.Join(to, ","),
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	var err error
	if cfg.UseTLS {
		err = s.sendTLS(cfg, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}
	if err != nil {
		logger.Errorf("[Notify] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Notify] Sent email to %v", to)
	return nil
}

func (s *NotifyService) sendTLS(cfg *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	return w.Close()
}
