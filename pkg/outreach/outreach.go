// Package outreach builds personalized direct messages for pending contacts
// and dispatches them through an authenticated session with human-like
// pacing between sends.
package outreach

import (
	"context"
	"time"

	"instadm/pkg/instagram"
	"instadm/pkg/likers"
	"instadm/pkg/logger"
	"instadm/pkg/message"
	"instadm/pkg/pacing"
	"instadm/pkg/session"
	"instadm/pkg/store"
)

// Default pacing bounds. Sending waits longer than generation so that the
// dispatch cadence stays well inside what a human could plausibly type.
const (
	defaultSendPacingMin = 6 * time.Second
	defaultSendPacingMax = 9 * time.Second
	defaultGenPacingMin  = 3 * time.Second
	defaultGenPacingMax  = 5 * time.Second
)

// Message is one fully prepared outgoing direct message.
type Message struct {
	Username string
	UserID   int64
	Language string
	Text     string
}

// SessionManager revalidates and rebuilds sessions around individual sends.
type SessionManager interface {
	EnsureValid(ctx context.Context, sess *session.Session) (*session.Session, error)
	Reset(ctx context.Context) (*session.Session, error)
}

// ContactStore records delivery outcomes.
type ContactStore interface {
	MarkContacted(ctx context.Context, username string) error
}

// LanguageStore resolves the stored language of a contact.
type LanguageStore interface {
	Language(ctx context.Context, username string) (string, error)
}

// Dispatcher sends prepared messages one by one, revalidating the session
// before each send and recording successes.
type Dispatcher struct {
	sessions SessionManager
	contacts ContactStore
	pacer    pacing.Pacer
	logger   logger.Logger
}

// NewDispatcher creates a dispatcher. A nil pacer falls back to the default
// send cadence.
func NewDispatcher(sessions SessionManager, contacts ContactStore, pacer pacing.Pacer, log logger.Logger) *Dispatcher {
	if pacer == nil {
		pacer = pacing.NewUniform(defaultSendPacingMin, defaultSendPacingMax)
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Dispatcher{
		sessions: sessions,
		contacts: contacts,
		pacer:    pacer,
		logger:   log,
	}
}

// Dispatch delivers msgs through sess. It returns the number of messages
// delivered and the session that was current when it stopped.
//
// A rate-limit signal aborts the remainder of the batch. An authorization
// failure skips only that recipient. A session invalidation rebuilds the
// session from scratch and skips the recipient whose send triggered it.
// Each recipient is marked contacted only after a confirmed send, and the
// pacing delay runs after every attempt regardless of outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, msgs []Message) (int, *session.Session, error) {
	sent := 0
	for _, msg := range msgs {
		current, err := d.sessions.EnsureValid(ctx, sess)
		if err != nil {
			return sent, sess, err
		}
		sess = current

		err = sess.Client.DirectSend(msg.Text, msg.UserID)
		switch {
		case err == nil:
			sent++
			if markErr := d.contacts.MarkContacted(ctx, msg.Username); markErr != nil {
				d.logger.WarnWithFields("failed to record contact", map[string]interface{}{
					"username": msg.Username,
					"error":    markErr.Error(),
				})
			}
			d.logger.InfoWithFields("message sent", map[string]interface{}{
				"username": msg.Username,
				"language": msg.Language,
			})

		case instagram.IsRateLimited(err):
			d.logger.WarnWithFields("rate limited, stopping batch", map[string]interface{}{
				"username":  msg.Username,
				"sent":      sent,
				"remaining": len(msgs) - sent,
			})
			return sent, sess, err

		case instagram.IsSessionInvalid(err):
			d.logger.WithError(err).WithField("username", msg.Username).
				Warn("session invalidated mid-send, rebuilding")
			rebuilt, resetErr := d.sessions.Reset(ctx)
			if resetErr != nil {
				return sent, sess, resetErr
			}
			sess = rebuilt

		case instagram.IsUnauthorized(err):
			d.logger.InfoWithFields("recipient does not accept messages, skipping", map[string]interface{}{
				"username": msg.Username,
			})

		default:
			d.logger.WarnWithFields("failed to send message", map[string]interface{}{
				"username": msg.Username,
				"error":    err.Error(),
			})
		}

		if err := d.pacer.Wait(ctx); err != nil {
			return sent, sess, err
		}
	}
	return sent, sess, nil
}

// BuildMessages generates one message per pending contact. Contacts whose
// generation fails are skipped with a warning; a pacing delay separates
// generation calls.
func BuildMessages(ctx context.Context, contacts LanguageStore, gen message.Generator, pending []store.PendingContact, pacer pacing.Pacer, log logger.Logger) ([]Message, error) {
	if pacer == nil {
		pacer = pacing.NewUniform(defaultGenPacingMin, defaultGenPacingMax)
	}
	if log == nil {
		log = logger.GetLogger()
	}

	msgs := make([]Message, 0, len(pending))
	for i, contact := range pending {
		lang, err := contacts.Language(ctx, contact.Username)
		if err != nil {
			log.WarnWithFields("failed to resolve contact language", map[string]interface{}{
				"username": contact.Username,
				"error":    err.Error(),
			})
			lang = likers.DefaultLanguage
		}

		text, err := gen.Generate(ctx, contact.Username, lang)
		if err != nil {
			log.WarnWithFields("failed to generate message, skipping contact", map[string]interface{}{
				"username": contact.Username,
				"error":    err.Error(),
			})
		} else {
			msgs = append(msgs, Message{
				Username: contact.Username,
				UserID:   contact.Pk,
				Language: lang,
				Text:     text,
			})
		}

		if i < len(pending)-1 {
			if err := pacer.Wait(ctx); err != nil {
				return msgs, err
			}
		}
	}
	return msgs, nil
}
