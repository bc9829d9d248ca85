package message

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/audit"
	"github.com/trezcool/campus/core/user"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("message not found")
)

type (
	Repository interface {
		// QueryMessages returns the messages userID sent or received, newest first.
		QueryMessages(ctx context.Context, userID string, filter QueryFilter) ([]Message, error)
		// CreateMessage adds msg as the newest message.
		CreateMessage(ctx context.Context, msg Message) error
		// MarkRead adds userID to the readers of the message, if absent.
		MarkRead(ctx context.Context, id, userID string) (Message, error)
	}

	Service struct {
		db     core.Transactor
		repo   Repository
		users  user.Repository
		audits *audit.Service
		emails core.EmailService
		now    func() time.Time
	}
)

func NewService(
	db core.Transactor,
	repo Repository,
	users user.Repository,
	audits *audit.Service,
	emails core.EmailService,
) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		users:  users,
		audits: audits,
		emails: emails,
		now:    time.Now,
	}
}

func (svc *Service) Query(ctx context.Context, caller user.User, filter QueryFilter) ([]Message, error) {
	filter.Box = core.CleanString(filter.Box, true /* lower */)
	return svc.repo.QueryMessages(ctx, caller.ID, filter)
}

// Send creates a Message from sender to every recipient of sr and notifies the recipients by email.
func (svc *Service) Send(ctx context.Context, sender user.User, sr SendRequest) (Message, error) {
	var (
		msg        Message
		recipients []user.User
	)
	err := svc.db.Atomic(ctx, func(ctx context.Context) error {
		for _, id := range sr.Recipients {
			usr, err := svc.users.GetUserByID(ctx, id)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return core.NewValidationError(nil, core.FieldError{
						Field: "recipients",
						Error: fmt.Sprintf("unknown recipient: %s", id),
					})
				}
				return errors.Wrap(err, "finding recipient")
			}
			recipients = append(recipients, usr)
		}

		msg = Message{
			ID:         "msg-" + uuid.NewString(),
			Title:      sr.Title,
			Body:       sr.Body,
			SenderID:   sender.ID,
			Recipients: sr.Recipients,
			CreatedAt:  svc.now().UTC(),
			ReadBy:     make([]string, 0),
			Type:       sr.Type,
		}
		if err := svc.repo.CreateMessage(ctx, msg); err != nil {
			return errors.Wrap(err, "creating message")
		}

		_, err := svc.audits.Record(ctx, audit.Entry{
			ActorID:   sender.ID,
			ActorName: sender.Name,
			Action:    "send_message",
			Resource:  "/api/messages",
			Details: map[string]interface{}{
				"recipientCount": len(msg.Recipients),
				"messageType":    msg.Type,
			},
		})
		return err
	})
	if err != nil {
		return Message{}, err
	}

	svc.notify(sender, msg, recipients)
	return msg, nil
}

func (svc *Service) notify(sender user.User, msg Message, recipients []user.User) {
	emails := make([]*core.EmailMessage, 0, len(recipients))
	for _, rcpt := range recipients {
		if rcpt.Email == "" {
			continue
		}
		emails = append(emails, &core.EmailMessage{
			To:           []mail.Address{{Name: rcpt.Name, Address: rcpt.Email}},
			Subject:      msg.Title,
			TemplateName: "new_message",
			TemplateData: map[string]interface{}{
				"RecipientName": rcpt.Name,
				"SenderName":    sender.Name,
				"Type":          msg.Type,
				"Title":         msg.Title,
				"Body":          msg.Body,
			},
		})
	}
	if len(emails) > 0 {
		svc.emails.SendMessages(emails...)
	}
}

// MarkRead records that reader has read the Message. Marking twice is a no-op.
func (svc *Service) MarkRead(ctx context.Context, reader user.User, id string) (Message, error) {
	return svc.repo.MarkRead(ctx, core.CleanString(id), reader.ID)
}
