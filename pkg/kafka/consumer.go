package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer wraps a Kafka reader with a worker pool.
type Consumer struct {
	cfg      *ConsumerConfig
	handlers map[string]MessageHandler
	readers  []*kafka.Reader
	msgChan  chan *message
	stopOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

type message struct {
	topic string
	data  []byte
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "default",
		WorkerCount: 1,
		BufferSize:  64,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    10e3,
		MaxBytes:    10e6,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	return &Consumer{
		cfg:      cfg,
		handlers: make(map[string]MessageHandler),
		msgChan:  make(chan *message, cfg.BufferSize),
	}, nil
}

// RegisterHandler adds a topic handler. Must be called before Start.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	c.handlers[h.Topic()] = h
}

// Start begins consuming registered topics. Blocks until Stop or a fatal read error.
func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go c.worker(ctx)
	}

	var readWG sync.WaitGroup
	for topic := range c.handlers {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			GroupID:  c.cfg.GroupID,
			Topic:    topic,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
		c.readers = append(c.readers, reader)

		readWG.Add(1)
		go func(topic string, reader *kafka.Reader) {
			defer readWG.Done()
			for {
				m, err := reader.ReadMessage(ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					log.Printf("kafka consumer: read %s: %v", topic, err)
					return
				}
				select {
				case c.msgChan <- &message{topic: topic, data: m.Value}:
				case <-ctx.Done():
					return
				}
			}
		}(topic, reader)
	}

	readWG.Wait()
	return nil
}

func (c *Consumer) worker(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-c.msgChan:
			if m == nil {
				continue
			}
			c.handle(ctx, m)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, m *message) {
	h, ok := c.handlers[m.topic]
	if !ok {
		return
	}

	backoff := c.cfg.BackoffMin
	for attempt := 0; attempt <= c.cfg.RetryMax; attempt++ {
		if err := h.Handle(ctx, m.data); err == nil {
			return
		} else if attempt == c.cfg.RetryMax {
			log.Printf("kafka consumer: %s handler gave up after %d attempts: %v", m.topic, attempt+1, err)
			return
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff *= 2
		if backoff > c.cfg.BackoffMax {
			backoff = c.cfg.BackoffMax
		}
	}
}

// Stop shuts down readers and workers.
func (c *Consumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		for _, r := range c.readers {
			if cerr := r.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}
