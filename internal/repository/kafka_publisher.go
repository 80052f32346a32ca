package repository

import (
	"context"
	"fmt"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	pkgkafka "github.com/pbtrad/balancing-market/pkg/kafka"
)

// KafkaPublisher emits ingested actuals to a Kafka topic, keyed by series
// identity so records for the same series land on the same partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates an actuals publisher over an existing producer.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishActuals(ctx context.Context, recs []models.SeriesRecord) error {
	if len(recs) == 0 {
		return nil
	}

	msgs := make([]pkgkafka.Message, 0, len(recs))
	for _, rec := range recs {
		if rec.Kind != models.KindActual {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(fmt.Sprintf("%s:%s:%s", rec.SeriesType, rec.MarketType, rec.Region)),
			Value: rec,
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)
