package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic топик уведомлений по умолчанию
const DefaultTopic = "appointment.notifications"

// Kafka публикует уведомления в топик, откуда их забирает сервис рассылки
type Kafka struct {
	writer MessageWriter
	now    func() time.Time
	log    Logger
}

// Notification формат сообщения в топике
type Notification struct {
	To     string    `json:"to"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sentAt"`
}

// NewKafka создает публикатора поверх kafka-go writer
func NewKafka(brokers []string, topic string, log Logger) *Kafka {
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}

	return NewKafkaWithWriter(writer, log)
}

// NewKafkaWithWriter создает публикатора с произвольным writer
func NewKafkaWithWriter(writer MessageWriter, log Logger) *Kafka {
	return &Kafka{
		writer: writer,
		now:    time.Now,
		log:    log,
	}
}

// Send публикует уведомление. Ключ сообщения - контакт получателя,
// поэтому сообщения одному получателю попадают в одну партицию по порядку
func (k *Kafka) Send(ctx context.Context, to string, body string) bool {
	value, err := json.Marshal(Notification{To: to, Body: body, SentAt: k.now().UTC()})
	if err != nil {
		k.log.Warn("KafkaNotifier: failed to encode notification for %s: %v", to, err)
		return false
	}

	msg := kafka.Message{
		Key:   []byte(to),
		Value: value,
		Headers: []kafka.Header{
			{Key: "content_type", Value: []byte("application/json")},
		},
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		k.log.Warn("KafkaNotifier: failed to publish notification for %s: %v", to, err)
		return false
	}

	return true
}

// Close закрывает writer
func (k *Kafka) Close() error {
	return k.writer.Close()
}
