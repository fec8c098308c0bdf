package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange общий direct-exchange сервиса.
const Exchange = "notifications"

// Очереди и ключи маршрутизации.
const (
	TrialQueue         = "notifications.trial"
	TrialRoutingKey    = "trial"
	RefreshRoutingKey  = "subscription.updated"
	defaultPrefetchCnt = 10
)

// QueueConfig очередь и ключ, которым она привязана к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetQueues возвращает общие durable-очереди сервиса.
// Очередь событий подписки у каждого экземпляра своя, см. DeclareInstanceQueue.
func GetQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: TrialQueue, RoutingKey: TrialRoutingKey},
	}
}

// DeclareInstanceQueue объявляет эксклюзивную очередь с именем от брокера и привязывает
// её к Exchange по routingKey. Каждый экземпляр API получает свою копию события,
// очередь удаляется вместе с соединением.
func DeclareInstanceQueue(ch *amqp.Channel, routingKey string) (string, error) {
	const op = "rabbitmq.DeclareInstanceQueue"
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.QueueBind(q.Name, routingKey, Exchange, false, nil); err != nil {
		return "", fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.Name, routingKey, err)
	}
	return q.Name, nil
}

// SetupChannel открывает канал, объявляет Exchange и привязывает к нему очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(defaultPrefetchCnt, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, Exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
