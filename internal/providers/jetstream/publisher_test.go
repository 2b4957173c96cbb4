package jetstream_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/messaging"
	"github.com/feral-file/ff-collection-indexer/internal/mocks"
	"github.com/feral-file/ff-collection-indexer/internal/providers/jetstream"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var testConfig = jetstream.Config{
	URL:            "nats://localhost:4222",
	StreamName:     "INDEXING",
	MaxReconnects:  5,
	ReconnectWait:  time.Second,
	ConnectionName: "collection-indexer-test",
}

type testPublisherMocks struct {
	natsJS *mocks.MockNatsJetStream
	conn   *mocks.MockNatsConn
	js     *mocks.MockJetStream
}

func setupPublisherMocks(t *testing.T) *testPublisherMocks {
	ctrl := gomock.NewController(t)
	return &testPublisherMocks{
		natsJS: mocks.NewMockNatsJetStream(ctrl),
		conn:   mocks.NewMockNatsConn(ctrl),
		js:     mocks.NewMockJetStream(ctrl),
	}
}

func TestNewPublisher_EnsuresStream(t *testing.T) {
	tm := setupPublisherMocks(t)

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().EnsureStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg natsjs.StreamConfig) error {
			assert.Equal(t, "INDEXING", cfg.Name)
			assert.Equal(t, []string{"indexing.>"}, cfg.Subjects)
			assert.Positive(t, cfg.Duplicates)
			return nil
		})

	pub, err := jetstream.NewPublisher(context.Background(), testConfig, tm.natsJS, adapter.NewJSON(), adapter.NewJCS())
	require.NoError(t, err)
	require.NotNil(t, pub)

	tm.conn.EXPECT().Close()
	pub.Close()
}

func TestNewPublisher_StreamFailureClosesConnection(t *testing.T) {
	tm := setupPublisherMocks(t)

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().EnsureStream(gomock.Any(), gomock.Any()).Return(errors.New("permission denied"))
	tm.conn.EXPECT().Close()

	_, err := jetstream.NewPublisher(context.Background(), testConfig, tm.natsJS, adapter.NewJSON(), adapter.NewJCS())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INDEXING")
}

func TestNewPublisher_ConnectFailure(t *testing.T) {
	tm := setupPublisherMocks(t)

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(nil, nil, errors.New("no servers available"))

	_, err := jetstream.NewPublisher(context.Background(), testConfig, tm.natsJS, adapter.NewJSON(), adapter.NewJCS())
	require.Error(t, err)
}

func TestPublish_CanonicalPayloadAndDedupID(t *testing.T) {
	tm := setupPublisherMocks(t)
	ctx := context.Background()

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().EnsureStream(gomock.Any(), gomock.Any()).Return(nil)

	pub, err := jetstream.NewPublisher(ctx, testConfig, tm.natsJS, adapter.NewJSON(), adapter.NewJCS())
	require.NoError(t, err)

	event := messaging.Event{
		ID:         "1:0xabc:snap-1:live",
		Type:       messaging.EventCollectionLiveTailing,
		Partition:  "1:0xabc",
		AtBlock:    1000,
		OccurredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	tm.js.EXPECT().Publish(gomock.Any(), "indexing.collection.live_tailing", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte, opts ...natsjs.PublishOpt) (*natsjs.PubAck, error) {
			assert.Len(t, opts, 1)
			// canonical JSON sorts keys
			assert.Equal(t,
				`{"at_block":1000,"id":"1:0xabc:snap-1:live","occurred_at":"2025-06-01T12:00:00Z","partition":"1:0xabc","type":"collection.live_tailing"}`,
				string(data))
			return &natsjs.PubAck{Stream: "INDEXING", Sequence: 1}, nil
		})

	require.NoError(t, pub.Publish(ctx, event))
}

func TestPublish_BrokerError(t *testing.T) {
	tm := setupPublisherMocks(t)
	ctx := context.Background()

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().EnsureStream(gomock.Any(), gomock.Any()).Return(nil)
	tm.js.EXPECT().Publish(gomock.Any(), "indexing.grant.failed", gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	pub, err := jetstream.NewPublisher(ctx, testConfig, tm.natsJS, adapter.NewJSON(), adapter.NewJCS())
	require.NoError(t, err)

	err = pub.Publish(ctx, messaging.Event{ID: "x", Type: messaging.EventGrantFailed, GrantID: "g"})
	require.Error(t, err)
}
