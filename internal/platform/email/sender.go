package email

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hrms/internal/platform/metrics"
)

type Recipient struct {
	Email string
	Vars  map[string]any
}

type BulkResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type Sender struct {
	mailer   Mailer
	renderer *Renderer
	from     string
	workers  int
	logger   *zap.Logger
	metrics  *metrics.Collector
}

func NewSender(mailer Mailer, renderer *Renderer, from string, workers int, logger *zap.Logger, m *metrics.Collector) *Sender {
	if workers <= 0 {
		workers = 1
	}
	return &Sender{mailer: mailer, renderer: renderer, from: from, workers: workers, logger: logger, metrics: m}
}

func (s *Sender) SendText(ctx context.Context, to, subject, body string) error {
	err := s.mailer.Send(ctx, Message{From: s.from, To: to, Subject: subject, Body: body})
	s.metrics.EmailSent(err == nil)
	return err
}

func (s *Sender) SendTemplate(ctx context.Context, to, subject, template string, vars map[string]any) error {
	body, err := s.renderer.Render(template, vars)
	if err != nil {
		return err
	}
	err = s.mailer.Send(ctx, Message{From: s.from, To: to, Subject: subject, Body: body, HTML: true})
	s.metrics.EmailSent(err == nil)
	return err
}

// SendBulk sends one templated message per recipient on a bounded pool and
// waits for all of them. A failed recipient is logged and counted; the rest
// still go out and nothing is retried.
func (s *Sender) SendBulk(ctx context.Context, recipients []Recipient, subject, template string) BulkResult {
	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, rcpt := range recipients {
		g.Go(func() error {
			if err := s.SendTemplate(gctx, rcpt.Email, subject, template, rcpt.Vars); err != nil {
				failed.Add(1)
				s.logger.Warn("bulk email send failed", zap.String("to", rcpt.Email), zap.String("template", template), zap.Error(err))
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return BulkResult{Sent: int(sent.Load()), Failed: int(failed.Load())}
}
