package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pathwayhq/pathway/pkg/email"
	"github.com/pathwayhq/pathway/pkg/proto"
)

// Task topics.
const (
	TopicEmail = "email.send"
	TopicIndex = "search.index"
)

type indexTask struct {
	Kind    string `json:"kind"`
	RefID   int64  `json:"refId"`
	Content string `json:"content,omitempty"`
	Delete  bool   `json:"delete,omitempty"`
}

func (d *Backend) registerTasks() error {
	if err := d.queue.Handle(TopicEmail, func(ctx context.Context, payload []byte) error {
		var msg email.Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			return fmt.Errorf("decode email task: %w", err)
		}
		return d.mailer.Send(ctx, msg)
	}); err != nil {
		return err
	}

	return d.queue.Handle(TopicIndex, func(ctx context.Context, payload []byte) error {
		var t indexTask
		if err := json.Unmarshal(payload, &t); err != nil {
			return fmt.Errorf("decode index task: %w", err)
		}
		if t.Delete {
			return d.UnindexDocument(ctx, t.Kind, t.RefID)
		}
		return d.IndexDocument(ctx, t.Kind, t.RefID, t.Content)
	})
}

// enqueueEmail queues a notification. Failures are logged and never
// returned to the caller.
func (d *Backend) enqueueEmail(ctx context.Context, msg email.Message) {
	if msg.To == "" {
		return
	}
	if err := d.queue.Enqueue(ctx, TopicEmail, msg); err != nil {
		d.logger.Error("failed to queue email", "to", msg.To, "err", err)
	}
}

func (d *Backend) enqueueIndex(ctx context.Context, kind string, refID int64, content string) {
	t := indexTask{Kind: kind, RefID: refID, Content: content}
	if err := d.queue.Enqueue(ctx, TopicIndex, t); err != nil {
		d.logger.Error("failed to queue index", "kind", kind, "ref", refID, "err", err)
	}
}

func (d *Backend) enqueueUnindex(ctx context.Context, kind string, refID int64) {
	t := indexTask{Kind: kind, RefID: refID, Delete: true}
	if err := d.queue.Enqueue(ctx, TopicIndex, t); err != nil {
		d.logger.Error("failed to queue unindex", "kind", kind, "ref", refID, "err", err)
	}
}

func approvalMessage(u proto.User, org string) email.Message {
	return email.Message{
		To:      u.Email(),
		Subject: fmt.Sprintf("%s was approved", org),
		Body:    fmt.Sprintf("Hi %s,\n\nYour organization %s was approved. You can now publish opportunities.\n", u.Name(), org),
	}
}
