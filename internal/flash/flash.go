// Package flash implements a per-request queue of flash messages that is
// persisted in the session across one redirect and consumed when rendered.
package flash

import (
	"encoding/json"
	"errors"
	"html/template"

	"flashq/internal/model"

	"go.uber.org/zap"
)

// SessionKey is the session entry holding the pending messages.
const SessionKey = "FlashMessages"

var ErrNoSession = errors.New("flash: session adapter is required")

// Session is the capability the store needs from the host session layer.
type Session interface {
	Available() bool
	Has(key string) bool
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Options configure rendering.
type Options struct {
	Mode            model.Mode
	ShowCloseButton bool
	// CloseButtonHTML replaces DefaultCloseButtonHTML in alert markup when set.
	CloseButtonHTML string
	Logger          *zap.Logger
}

// Flash owns the ordered messages for the current request. It is not safe
// for concurrent use; one is built per request.
type Flash struct {
	session  Session
	messages []model.Message
	opts     Options
	logger   *zap.Logger
}

// New builds a store over sess and loads any messages left by a previous
// request.
func New(sess Session, opts Options) (*Flash, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	if opts.CloseButtonHTML == "" {
		opts.CloseButtonHTML = DefaultCloseButtonHTML
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	f := &Flash{
		session: sess,
		opts:    opts,
		logger:  logger,
	}
	f.LoadSession()
	return f, nil
}

// Mode reports the presentation mode.
func (f *Flash) Mode() model.Mode { return f.opts.Mode }

// Add appends a message. An empty cssOverride means the category default.
func (f *Flash) Add(content string, category model.Category, cssOverride string) model.Message {
	m := model.NewMessage(content, category, cssOverride)
	f.messages = append(f.messages, m)
	return m
}

func (f *Flash) Error(content string)   { f.Add(content, model.Error, "") }
func (f *Flash) Info(content string)    { f.Add(content, model.Information, "") }
func (f *Flash) Warning(content string) { f.Add(content, model.Warning, "") }
func (f *Flash) Success(content string) { f.Add(content, model.Success, "") }

// Messages returns a copy of the pending messages in display order.
func (f *Flash) Messages() []model.Message {
	out := make([]model.Message, len(f.messages))
	copy(out, f.messages)
	return out
}

// HasFlash reports whether any message matches category. Any matches every
// message.
func (f *Flash) HasFlash(category model.Category) bool {
	if category == model.Any && len(f.messages) > 0 {
		return true
	}
	for _, m := range f.messages {
		if m.Category == category {
			return true
		}
	}
	return false
}

// Count returns the number of messages matching category, Any counting all.
func (f *Flash) Count(category model.Category) int {
	if category == model.Any {
		return len(f.messages)
	}
	n := 0
	for _, m := range f.messages {
		if m.Category == category {
			n++
		}
	}
	return n
}

// LoadSession replaces the live messages with the session copy. A missing,
// empty or corrupt payload yields no messages.
func (f *Flash) LoadSession() {
	f.messages = f.readSession()
}

func (f *Flash) readSession() []model.Message {
	if !f.session.Available() || !f.session.Has(SessionKey) {
		return nil
	}
	payload, ok := f.session.Get(SessionKey)
	if !ok || payload == "" {
		return nil
	}

	var messages []model.Message
	if err := json.Unmarshal([]byte(payload), &messages); err != nil {
		f.logger.Warn("Discarding unreadable flash payload", zap.Error(err))
		return nil
	}
	return messages
}

// SaveSession writes the live messages to the session, replacing any prior
// copy. Call it before redirecting.
func (f *Flash) SaveSession() {
	if !f.session.Available() {
		return
	}
	messages := f.messages
	if messages == nil {
		messages = []model.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		f.logger.Error("Failed to encode flash messages", zap.Error(err))
		return
	}
	f.session.Set(SessionKey, string(data))
}

// ClearSession drops the session copy without touching the live messages.
func (f *Flash) ClearSession() {
	if !f.session.Available() {
		return
	}
	f.session.Remove(SessionKey)
}

// Clear discards every pending message, live and persisted.
func (f *Flash) Clear() {
	f.ClearSession()
	f.messages = nil
}

// Render returns markup for the messages matching category and consumes
// them. Messages of other categories stay pending in their original order.
func (f *Flash) Render(category model.Category) string {
	if !f.HasFlash(category) {
		return ""
	}

	r := newRenderer(f.opts)
	consumed := make(map[int64]struct{})
	for _, m := range f.messages {
		if !matches(m, category) {
			continue
		}
		r.write(m, effectiveClass(m, f.opts.Mode))
		consumed[m.ID] = struct{}{}
	}

	f.consume(consumed)
	return r.markup()
}

// HTML is Render for direct use from html/template.
func (f *Flash) HTML(category model.Category) template.HTML {
	return template.HTML(f.Render(category))
}

func matches(m model.Message, category model.Category) bool {
	// Stored Any cannot come from NewMessage; only a foreign payload carries it.
	return category == model.Any || m.Category == model.Any || m.Category == category
}

func (f *Flash) consume(ids map[int64]struct{}) {
	kept := f.messages[:0:0]
	for _, m := range f.messages {
		if _, ok := ids[m.ID]; !ok {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	f.SaveSession()
}
