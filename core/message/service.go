package message

import (
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/store"
)

// Service composes outbound notices, hands them to the mail backend and keeps
// the school's outbox in its tenant slot.
type Service struct {
	messages *store.TenantSlots[[]Message]
	mail     core.EmailService
	validate *validator.Validate
}

func NewService(m *store.Manager, mailSvc core.EmailService, validate *validator.Validate) *Service {
	return &Service{
		messages: store.NewTenantSlots(m, store.MessagesKey, func() []Message { return nil }),
		mail:     mailSvc,
		validate: validate,
	}
}

// Send validates, persists and dispatches a notice. Dispatch is best-effort:
// with no mail backend configured the message is kept with Delivered=false
// and no error, so the outbox stays the source of truth.
func (svc *Service) Send(schoolID string, nm NewMessage) (Message, error) {
	nm.Subject = core.CleanString(nm.Subject)
	if err := svc.validate.Struct(nm); err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:       uuid.NewString(),
		SchoolID: schoolID,
		To:       nm.To,
		Subject:  nm.Subject,
		Body:     nm.Body,
		SentAt:   time.Now().UTC(),
	}
	if svc.mail != nil {
		email := &core.EmailMessage{
			To:           toAddresses(nm.To),
			Subject:      nm.Subject,
			TemplateName: "message",
			TemplateData: struct {
				AppName, Subject, Body string
			}{core.Conf.AppName, nm.Subject, nm.Body},
		}
		svc.mail.SendMessages(email)
		msg.Delivered = true
	}

	slot := svc.messages.Slot(schoolID)
	if err := slot.Set(append(slot.Get(), msg)); err != nil {
		return Message{}, errors.Wrap(err, "persisting messages")
	}
	return msg, nil
}

// Outbox returns the school's sent and pending notices.
func (svc *Service) Outbox(schoolID string) ([]Message, error) {
	return svc.messages.Slot(schoolID).Get(), nil
}

func (svc *Service) Get(schoolID, id string) (Message, error) {
	for _, msg := range svc.messages.Slot(schoolID).Get() {
		if msg.ID == id {
			return msg, nil
		}
	}
	return Message{}, ErrMessageNotFound
}

func (svc *Service) Delete(schoolID, id string) error {
	slot := svc.messages.Slot(schoolID)
	msgs := slot.Get()
	kept := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.ID != id {
			kept = append(kept, msg)
		}
	}
	if len(kept) == len(msgs) {
		return ErrMessageNotFound
	}
	return errors.Wrap(slot.Set(kept), "persisting messages")
}

func (svc *Service) Close() {
	svc.messages.CloseAll()
}

func toAddresses(emails []string) []mail.Address {
	out := make([]mail.Address, 0, len(emails))
	for _, e := range emails {
		out = append(out, mail.Address{Address: e})
	}
	return out
}
