package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hapipet/internal/service"
)

const (
	TypeBookingNotification = "booking:notify"
	queueName               = "notifications"
	maxRetry                = 5
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) asynqOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.Addr, Password: c.Password, DB: c.DB}
}

// Queue enqueues booking notifications in Redis. It implements service.Dispatcher.
type Queue struct {
	client *asynq.Client
	log    *zap.Logger
}

func NewQueue(cfg RedisConfig, log *zap.Logger) *Queue {
	return &Queue{client: asynq.NewClient(cfg.asynqOpt()), log: log}
}

func NewNotificationTask(n service.Notification) (*asynq.Task, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingNotification, payload, asynq.MaxRetry(maxRetry), asynq.Queue(queueName)), nil
}

func (q *Queue) Dispatch(ctx context.Context, n service.Notification) error {
	task, err := NewNotificationTask(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	q.log.Debug("notification enqueued", zap.String("task_id", info.ID), zap.String("kind", string(n.Kind)),
		zap.String("booking_id", n.BookingID))
	return nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

// Server consumes the notification queue.
type Server struct {
	srv       *asynq.Server
	deliverer service.Deliverer
	log       *zap.Logger
}

func NewServer(cfg RedisConfig, deliverer service.Deliverer, log *zap.Logger) *Server {
	srv := asynq.NewServer(cfg.asynqOpt(), asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{queueName: 1},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			return time.Duration(n*n) * 10 * time.Second
		},
	})
	return &Server{srv: srv, deliverer: deliverer, log: log}
}

func (s *Server) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingNotification, s.handleNotification)
	return mux
}

// Start runs the consumer in the background.
func (s *Server) Start() error {
	s.log.Info("notification worker starting", zap.String("queue", queueName))
	return s.srv.Start(s.Mux())
}

func (s *Server) Shutdown() {
	s.srv.Shutdown()
}

func (s *Server) handleNotification(ctx context.Context, task *asynq.Task) error {
	var n service.Notification
	if err := json.Unmarshal(task.Payload(), &n); err != nil {
		s.log.Error("invalid notification payload", zap.Error(err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if err := s.deliverer.Deliver(ctx, n); err != nil {
		s.log.Warn("notification delivery failed, will retry",
			zap.String("kind", string(n.Kind)), zap.String("booking_id", n.BookingID), zap.Error(err))
		return err
	}
	return nil
}

// MonitorRedis pings Redis every interval until ctx is done and logs failures.
func MonitorRedis(ctx context.Context, cfg RedisConfig, interval time.Duration, log *zap.Logger) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	defer client.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil && ctx.Err() == nil {
				log.Warn("redis connection lost", zap.String("addr", cfg.Addr), zap.Error(err))
			}
		}
	}
}
