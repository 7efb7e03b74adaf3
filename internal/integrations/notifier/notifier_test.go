package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func TestSMSWebhook_Send(t *testing.T) {
	var got smsPayload
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.To == "+0000000" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewSMSWebhook(srv.URL, " token ", time.Second, logger.NewNop())

	assert.True(t, sender.Send(context.Background(), "+15550001", "Appointment 1 status updated to: CONFIRMED"))
	assert.Equal(t, smsPayload{To: "+15550001", Body: "Appointment 1 status updated to: CONFIRMED"}, got)
	assert.Equal(t, "Bearer token", auth)

	assert.False(t, sender.Send(context.Background(), "+0000000", "x"))
}

func TestSMSWebhook_Unreachable(t *testing.T) {
	sender := NewSMSWebhook("http://127.0.0.1:1", "", 200*time.Millisecond, logger.NewNop())
	assert.False(t, sender.Send(context.Background(), "+15550001", "x"))
}

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafka_Send(t *testing.T) {
	writer := &recordingWriter{}
	k := NewKafkaWithWriter(writer, logger.NewNop())
	k.now = func() time.Time { return time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC) }

	assert.True(t, k.Send(context.Background(), "+15550001", "Appointment 7 status updated to: IN_PROGRESS"))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, []byte("+15550001"), msg.Key)

	var n Notification
	require.NoError(t, json.Unmarshal(msg.Value, &n))
	assert.Equal(t, Notification{
		To:     "+15550001",
		Body:   "Appointment 7 status updated to: IN_PROGRESS",
		SentAt: time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC),
	}, n)

	require.NoError(t, k.Close())
	assert.True(t, writer.closed)
}

func TestKafka_SendFailure(t *testing.T) {
	writer := &recordingWriter{err: errors.New("leader not available")}
	k := NewKafkaWithWriter(writer, logger.NewNop())

	assert.False(t, k.Send(context.Background(), "+15550001", "x"))
}

func TestNoop_Send(t *testing.T) {
	assert.True(t, NewNoop(logger.NewNop()).Send(context.Background(), "+15550001", "x"))
}
