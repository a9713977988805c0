package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/config"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
	"github.com/oksasatya/karaoke-social-api/pkg/mailer"
	mailtpl "github.com/oksasatya/karaoke-social-api/pkg/mailer/templates"
)

// event_worker consumes notification jobs (welcome, password reset, gift
// received, level up) from RabbitMQ and delivers them through Mailgun.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; event worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	mg, err := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)
	if err != nil {
		log.Fatalf("mailgun: %v", err)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEventsQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	// geo lookups are cached in Redis when it is reachable
	resolver := helpers.CachedGeoResolver{Inner: mailtpl.IPAPIResolver{}}
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable; geo lookups are not cached")
			_ = rdb.Close()
		} else {
			defer func() { _ = rdb.Close() }()
			resolver.Rdb = rdb
		}
	}

	w := &worker{
		mg:       mg,
		resolver: resolver,
		logger:   logger,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			requeue, err := w.handle(ctx, msg.Body)
			if err != nil {
				logger.WithError(err).WithField("requeue", requeue).Warn("job failed")
				_ = msg.Nack(false, requeue)
				continue
			}
			_ = msg.Ack(false)
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEventsQueue).Info("event worker listening")
	<-stop
	logger.Info("shutting down...")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type sender interface {
	Send(ctx context.Context, to, subject, text, html, tag string) error
}

type worker struct {
	mg       sender
	resolver mailtpl.GeoResolver
	logger   *logrus.Logger
}

// handle renders and sends one job. The bool tells whether a failure is worth
// retrying: malformed jobs are dropped, delivery errors are requeued.
func (w *worker) handle(ctx context.Context, body []byte) (bool, error) {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return false, fmt.Errorf("bad message: %w", err)
	}

	helpers.EnsureRecipientAndEmail(&job)
	helpers.MapTypeToUniversal(&job)
	if job.To == "" {
		return false, fmt.Errorf("job without recipient")
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !strings.EqualFold(job.Template, mailtpl.Universal) {
			return false, fmt.Errorf("unknown template %q", job.Template)
		}
		if w.resolver != nil {
			helpers.LocalizeTimesIfPossible(ctx, w.resolver, job.Data)
			if loc, ok := job.Data["Location"]; !ok || fmt.Sprintf("%v", loc) == "" {
				if ipVal, okIP := job.Data["IP"]; okIP && fmt.Sprintf("%v", ipVal) != "" {
					if g, err := w.resolver.Lookup(ctx, fmt.Sprintf("%v", ipVal)); err == nil {
						job.Data["Location"] = mailtpl.FormatGeo(g)
					}
				}
			}
		}
		t, h, err := mailtpl.Render(mailtpl.Universal, job.Data)
		if err != nil {
			return false, fmt.Errorf("render universal: %w", err)
		}
		subject, text, html = helpers.SubjectForUniversal(job.Data), t, h
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	tag := ""
	if t, ok := job.Data["Type"].(string); ok {
		tag = t
	}
	if err := w.mg.Send(c, job.To, subject, text, html, tag); err != nil {
		return true, fmt.Errorf("send: %w", err)
	}
	if w.logger != nil {
		w.logger.WithFields(logrus.Fields{"to": job.To, "type": job.Data["Type"]}).Info("email sent")
	}
	return false, nil
}
