package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/local-business-directory/config"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
	"github.com/oksasatya/local-business-directory/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		logger.WithError(err).Fatal("rabbitmq connect failed")
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.WithError(err).Fatal("consume failed")
	}

	w := &worker{Sender: mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), Logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			settle(msg, w.handle(ctx, msg.Body))
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down...")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type outcome int

const (
	ack outcome = iota
	drop
	retry
)

type worker struct {
	Sender mailer.Sender
	Logger *logrus.Logger
}

// handle renders and sends one queued job. Malformed or unrenderable jobs
// are dropped; delivery failures are requeued.
func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		helpers.LogError(w.Logger, "bad message", err, nil)
		return drop
	}
	subject, text, html, err := helpers.RenderJob(job)
	if err != nil {
		fields := logrus.Fields{"template": job.Template}
		if errors.Is(err, helpers.ErrEmptyJob) {
			fields["reason"] = "empty"
		}
		helpers.LogError(w.Logger, "render failed", err, fields)
		return drop
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		helpers.LogError(w.Logger, "send failed", err, logrus.Fields{"template": job.Template})
		return retry
	}
	helpers.LogInfo(w.Logger, "email sent", logrus.Fields{"template": job.Template})
	return ack
}

func settle(msg amqp.Delivery, o outcome) {
	switch o {
	case ack:
		_ = msg.Ack(false)
	case retry:
		_ = msg.Nack(false, true)
	default:
		_ = msg.Nack(false, false)
	}
}
