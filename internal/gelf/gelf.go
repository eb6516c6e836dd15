package gelf

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Hook sends every logrus entry as one GELF message over UDP.
type Hook struct {
	conn     net.Conn
	hostname string
	service  string
}

// New creates a GELF UDP hook connected to addr (e.g. "172.17.0.1:12201").
func New(addr, service string) (*Hook, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service
	}

	return &Hook{conn: conn, hostname: hostname, service: service}, nil
}

// Levels implements logrus.Hook.
func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook. Send errors are dropped so logging never fails.
func (h *Hook) Fire(e *logrus.Entry) error {
	payload, err := json.Marshal(h.message(e))
	if err != nil {
		return nil
	}
	// Fire-and-forget
	h.conn.Write(payload)
	return nil
}

func (h *Hook) message(e *logrus.Entry) map[string]interface{} {
	msg := map[string]interface{}{
		"version":       "1.1",
		"host":          h.hostname,
		"short_message": e.Message,
		"timestamp":     float64(e.Time.UnixNano()) / 1e9,
		"level":         syslogLevel(e.Level),
		"_service":      h.service,
	}
	if e.Time.IsZero() {
		msg["timestamp"] = float64(time.Now().UnixNano()) / 1e9
	}
	for k, v := range e.Data {
		// "_id" is reserved by GELF
		if k == "id" {
			k = "field_id"
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		msg["_"+k] = fmt.Sprint(v)
	}
	return msg
}

// Close closes the UDP socket.
func (h *Hook) Close() error {
	return h.conn.Close()
}

func syslogLevel(l logrus.Level) int {
	switch l {
	case logrus.PanicLevel:
		return 0
	case logrus.FatalLevel:
		return 2
	case logrus.ErrorLevel:
		return 3
	case logrus.WarnLevel:
		return 4
	case logrus.InfoLevel:
		return 6
	default:
		return 7
	}
}
