package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJetStream struct {
	mock.Mock
}

func (m *mockJetStream) Publish(ctx context.Context, subject string, data []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	args := m.Called(ctx, subject, data)
	ack, _ := args.Get(0).(*jetstream.PubAck)
	return ack, args.Error(1)
}

func (m *mockJetStream) CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	args := m.Called(ctx, cfg)
	return nil, args.Error(1)
}

type testEvent struct {
	payloadErr error
}

func (testEvent) Subject() string { return "inventory.product.created" }

func (e testEvent) Payload() ([]byte, error) {
	if e.payloadErr != nil {
		return nil, e.payloadErr
	}
	return []byte(`{"id":1}`), nil
}

func Test_NatsPublisher_Publish(t *testing.T) {
	testCases := []struct {
		name        string
		event       testEvent
		publishErr  error
		expectCall  bool
		expectError bool
	}{
		{name: "published", expectCall: true},
		{name: "broker error", publishErr: errors.New("no responders"), expectCall: true, expectError: true},
		{name: "payload error", event: testEvent{payloadErr: errors.New("boom")}, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			js := new(mockJetStream)
			if tc.expectCall {
				js.On("Publish", mock.Anything, "inventory.product.created", []byte(`{"id":1}`)).
					Return(&jetstream.PubAck{Stream: "INVENTORY"}, tc.publishErr).Once()
			}
			p := &NatsPublisher{js: js}
			// when
			err := p.Publish(context.Background(), tc.event)
			// then
			if tc.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			js.AssertExpectations(t)
		})
	}
}

func Test_NatsPublisher_Publish_AppliesTimeout(t *testing.T) {
	// given
	js := new(mockJetStream)
	js.On("Publish", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= time.Second
	}), "inventory.product.created", mock.Anything).Return(&jetstream.PubAck{}, nil).Once()
	p := &NatsPublisher{js: js, timeout: time.Second}
	// when
	err := p.Publish(context.Background(), testEvent{})
	// then
	require.NoError(t, err)
	js.AssertExpectations(t)
}

func Test_EnsureStream(t *testing.T) {
	js := new(mockJetStream)
	js.On("CreateOrUpdateStream", mock.Anything, mock.MatchedBy(func(cfg jetstream.StreamConfig) bool {
		return cfg.Name == "INVENTORY" && assert.ObjectsAreEqual([]string{"inventory.>"}, cfg.Subjects)
	})).Return(nil, nil).Once()

	require.NoError(t, EnsureStream(context.Background(), js, "INVENTORY", "inventory.>"))
	js.AssertExpectations(t)

	assert.Error(t, EnsureStream(context.Background(), js, ""))
}
