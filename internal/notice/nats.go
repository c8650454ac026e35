package notice

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the part of *nats.Conn the NATS notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type natsNotifier struct {
	pub     Publisher
	subject string
	logger  *slog.Logger
}

// NATS publishes every notice as JSON on subject. Publish failures are logged
// and otherwise ignored; a notice is never worth failing a request for.
func NATS(pub Publisher, subject string, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &natsNotifier{pub: pub, subject: subject, logger: logger}
}

func (n *natsNotifier) Notify(item Notice) {
	data, err := json.Marshal(item)
	if err != nil {
		n.logger.Error("encode notice", "err", err)
		return
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		n.logger.Warn("publish notice", "subject", n.subject, "err", err)
	}
}

// Dial connects to a NATS server for notice fan-out.
func Dial(url, name string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
}
