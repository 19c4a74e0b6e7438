package kafka

import (
	"crypto/tls"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Config holds Kafka connection parameters.
type Config struct {
	ConsumerGroup string

	SASLMechanism string // "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	TLS         bool
	SASLEnabled bool
}

func (c Config) tlsConfig() *tls.Config {
	if !c.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

func (c Config) saslMechanism() (sasl.Mechanism, error) {
	if !c.SASLEnabled {
		return nil, nil
	}
	switch c.SASLMechanism {
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, c.SASLUsername, c.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, c.SASLUsername, c.SASLPassword)
	case "PLAIN", "":
		return plain.Mechanism{Username: c.SASLUsername, Password: c.SASLPassword}, nil
	default:
		return nil, fmt.Errorf("kafka: unsupported SASL mechanism %q", c.SASLMechanism)
	}
}

func (c Config) dialer() (*kafkago.Dialer, error) {
	if !c.TLS && !c.SASLEnabled {
		return nil, nil
	}
	mechanism, err := c.saslMechanism()
	if err != nil {
		return nil, err
	}
	return &kafkago.Dialer{TLS: c.tlsConfig(), SASLMechanism: mechanism, DualStack: true}, nil
}

func (c Config) transport() (*kafkago.Transport, error) {
	if !c.TLS && !c.SASLEnabled {
		return nil, nil
	}
	mechanism, err := c.saslMechanism()
	if err != nil {
		return nil, err
	}
	return &kafkago.Transport{TLS: c.tlsConfig(), SASL: mechanism}, nil
}
