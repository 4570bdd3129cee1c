package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const activityLogPath = "logs/registrations.log"

// StartActivityConsumer connects to RabbitMQ, declares the registration
// activity queues (durable) and starts consuming them. Each message is
// appended to logs/registrations.log in a single-line, human-friendly
// format. The function runs a reconnect loop with exponential backoff
// and keeps running; processing errors are logged and the offending
// message rejected so the server continues operating.
func StartActivityConsumer() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("registration-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("registration-consumer: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	queues := []string{ConfirmedQueue, CancelledQueue}
	deliveries := make(chan queuedDelivery)
	for _, name := range queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume %s: %w", name, err)
		}
		go func(name string, msgs <-chan amqp.Delivery) {
			for d := range msgs {
				deliveries <- queuedDelivery{queue: name, d: d}
			}
		}(name, msgs)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case qd := <-deliveries:
			if err := appendActivity(qd.queue, qd.d.Body); err != nil {
				log.Printf("registration-consumer: %v", err)
				_ = qd.d.Nack(false, false)
				continue
			}
			_ = qd.d.Ack(false)
		case err := <-closed:
			return fmt.Errorf("connection closed: %v", err)
		}
	}
}

type queuedDelivery struct {
	queue string
	d     amqp.Delivery
}

func appendActivity(queueName string, body []byte) error {
	var act RegistrationActivity
	if err := json.Unmarshal(body, &act); err != nil {
		return fmt.Errorf("unmarshal %s message: %w", queueName, err)
	}

	action := "registered"
	if queueName == CancelledQueue {
		action = "cancelled"
	}
	line := fmt.Sprintf("%s user=%d %s event=%d %q date=%s location=%q\n",
		time.Now().UTC().Format(time.RFC3339), act.UserID, action,
		act.EventID, act.EventTitle, act.EventDate, act.Location)

	if err := os.MkdirAll(filepath.Dir(activityLogPath), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(activityLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}
