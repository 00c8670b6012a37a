package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-users/internal/mailer/mocks"
	"github.com/talx-hub/gopher-users/internal/model/email"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

type settlement struct {
	tag     uint64
	acked   bool
	requeue bool
}

type fakeAcknowledger struct {
	settled []settlement
	mu      sync.Mutex
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled = append(a.settled, settlement{tag: tag, acked: true})
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled = append(a.settled, settlement{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) all() []settlement {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]settlement(nil), a.settled...)
}

func delivery(t *testing.T, ack amqp.Acknowledger, tag uint64, job email.Job) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(job)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: body}
}

func TestTaskFromDelivery(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want settlement
	}{
		{"sent", nil, settlement{tag: 1, acked: true}},
		{"pool busy", serviceerrs.ErrSemaphoreTimeoutExceeded, settlement{tag: 1, requeue: true}},
		{"pool stopping", fmt.Errorf("%w: %w", serviceerrs.ErrMailerStopped, context.Canceled),
			settlement{tag: 1, requeue: true}},
		{"smtp error", errSMTPDown, settlement{tag: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			job := resetPassword("a@example.com")

			task, err := TaskFromDelivery(delivery(t, ack, 1, job), slog.Default())
			require.NoError(t, err)
			assert.Equal(t, job, task.Job)

			task.Done(tt.err)
			assert.Equal(t, []settlement{tt.want}, ack.all())
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		_, err := TaskFromDelivery(amqp.Delivery{Body: []byte("{not json")}, slog.Default())
		assert.Error(t, err)
	})
}

func TestAgent_Feed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ack := &fakeAcknowledger{}
	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- delivery(t, ack, 1, newAccount("a@example.com"))
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("garbage")}
	deliveries <- delivery(t, ack, 3, newAccount("fail@example.com"))
	close(deliveries)

	a := NewAgent(newTestRenderer(t), configureMockSender(t), 1, 1)
	runDone := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(runDone)
	}()

	a.Feed(ctx, deliveries)

	assert.Eventually(t, func() bool {
		return len(ack.all()) == 3 && a.sent.Load()+a.failed.Load() == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-runDone

	assert.ElementsMatch(t, []settlement{
		{tag: 1, acked: true},
		{tag: 2},
		{tag: 3},
	}, ack.all())
	assert.Equal(t, uint64(1), a.sent.Load())
	assert.Equal(t, uint64(1), a.failed.Load())
}

func TestAgent_Dispatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sent := make(chan email.Message, 1)
	sender := mocks.NewMockSender(t)
	sender.EXPECT().
		Send(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, msg email.Message) error {
			sent <- msg
			return nil
		}).
		Once()

	a := NewAgent(newTestRenderer(t), sender, 1, 2)
	runDone := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(runDone)
	}()

	d := a.Dispatcher()
	require.NoError(t, d.Dispatch(context.Background(), resetPassword("a@example.com")))

	select {
	case msg := <-sent:
		assert.Equal(t, "a@example.com", msg.To)
	case <-time.After(time.Second):
		t.Fatal("e-mail was not sent")
	}

	assert.Error(t, d.Dispatch(context.Background(), email.Job{Kind: email.KindResetPassword}))

	cancel()
	<-runDone

	blocked := &LocalDispatcher{tasks: make(chan Task), stopped: a.stopped}
	err := blocked.Dispatch(context.Background(), resetPassword("b@example.com"))
	assert.ErrorIs(t, err, serviceerrs.ErrMailerStopped)
}

type fakePublisher struct {
	err   error
	queue string
	body  []byte
}

func (p *fakePublisher) Publish(_ context.Context, queue string, body []byte) error {
	p.queue = queue
	p.body = body
	return p.err
}

func TestQueueDispatcher_Dispatch(t *testing.T) {
	p := &fakePublisher{}
	d := NewQueueDispatcher(p, "email_jobs")

	job := newAccount("a@example.com")
	require.NoError(t, d.Dispatch(context.Background(), job))
	assert.Equal(t, "email_jobs", p.queue)

	var decoded email.Job
	require.NoError(t, json.Unmarshal(p.body, &decoded))
	assert.Equal(t, job, decoded)

	p.err = errors.New("channel closed")
	assert.ErrorIs(t, d.Dispatch(context.Background(), job), p.err)

	assert.Error(t, d.Dispatch(context.Background(), email.Job{Kind: email.KindNewAccount}))
}

func TestNoopDispatcher_Dispatch(t *testing.T) {
	err := NewNoopDispatcher(slog.Default()).Dispatch(context.Background(), newAccount("a@example.com"))
	assert.ErrorIs(t, err, serviceerrs.ErrEmailsDisabled)
}
