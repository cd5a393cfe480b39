package email

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
	"github.com/pathwayhq/pathway/pkg/config"
)

func TestNewWithoutHostLogs(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	m := New(config.EmailConfig{}, log.New(&buf))
	_, ok := m.(*LogMailer)
	is.True(ok)

	is.NoErr(m.Send(context.TODO(), Message{To: "a@example.com", Subject: "Verified"}))
	is.True(strings.Contains(buf.String(), "a@example.com"))
}

func TestSMTPBuild(t *testing.T) {
	is := is.New(t)
	m := New(config.EmailConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"}, log.Default())
	smtp, ok := m.(*SMTPMailer)
	is.True(ok)

	msg, err := smtp.Build(Message{To: "student@example.com", Subject: "Hi", Body: "hello"})
	is.NoErr(err)
	to := msg.GetTo()
	is.Equal(len(to), 1)
	is.Equal(to[0].Address, "student@example.com")

	_, err = smtp.Build(Message{To: "not an address"})
	is.True(err != nil)
}
