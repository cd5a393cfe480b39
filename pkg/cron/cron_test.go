package cron

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
)

func TestCronLogger(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	clogger := cronLogger{logger}
	clogger.Info("foo")
	clogger.Error(fmt.Errorf("bar"), "test")
	is.Equal(buf.String(), "DEBU foo\nERRO test err=bar\n")
}

func TestSchedulerAddRemove(t *testing.T) {
	is := is.New(t)
	s := NewScheduler(context.TODO())
	id, err := s.AddFunc("0 3 * * *", func() {})
	is.NoErr(err)

	s.Start()
	defer s.Shutdown()

	next := s.Next(id)
	is.True(next.After(time.Now()))
	is.Equal(next.Location(), time.UTC)
	is.Equal(next.Hour(), 3)

	s.Remove(id)
	is.True(s.Next(id).IsZero())
}

func TestSchedulerInvalidSpec(t *testing.T) {
	is := is.New(t)
	s := NewScheduler(context.TODO())
	_, err := s.AddFunc("every tuesday", func() {})
	is.True(err != nil)
}
