// Package events publica los movimientos confirmados del ledger en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

var _ inventory.MovementPublisher = (*KafkaPublisher)(nil)

// MovementEvent payload JSON de cada mensaje. La clave del mensaje es el ID del producto, de modo
// que los movimientos de un producto conservan su orden dentro de la partición.
type MovementEvent struct {
	MovementID     int64           `json:"movement_id"`
	TransactionID  string          `json:"transaction_id"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	MovementType   string          `json:"movement_type"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	LocationFrom   string          `json:"location_from,omitempty"`
	LocationTo     string          `json:"location_to,omitempty"`
	Actor          string          `json:"actor"`
	Timestamp      time.Time       `json:"timestamp"`
}

// MessageWriter subconjunto de *kafka.Writer usado por el publicador.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implementa inventory.MovementPublisher.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
}

// NewKafkaPublisher crea el writer para los brokers y el tópico indicados.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
	return &KafkaPublisher{writer: writer, topic: topic}
}

// NewKafkaPublisherWithWriter usa un writer ya construido (tests).
func NewKafkaPublisherWithWriter(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic}
}

// PublishMovement escribe un mensaje por movimiento.
func (p *KafkaPublisher) PublishMovement(ctx context.Context, movement *entity.Movement) error {
	msg, err := NewMovementMessage(movement)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publicar movimiento %d en %s: %w", movement.ID, p.topic, err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewMovementMessage arma el mensaje Kafka de un movimiento.
func NewMovementMessage(m *entity.Movement) (kafka.Message, error) {
	value, err := json.Marshal(MovementEvent{
		MovementID:     m.ID,
		TransactionID:  m.TransactionID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		MovementType:   m.Type,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		LocationFrom:   m.LocationFrom,
		LocationTo:     m.LocationTo,
		Actor:          m.Actor,
		Timestamp:      m.Timestamp,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("codificar movimiento: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(m.ProductID, 10)),
		Value: value,
		Time:  m.Timestamp,
		Headers: []kafka.Header{
			{Key: "movement_type", Value: []byte(m.Type)},
		},
	}, nil
}
