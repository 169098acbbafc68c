package consumer

import (
	"context"
	"encoding/json"
	"testing"

	mqttcommon "wisefido-risk/common/mqtt"
	"wisefido-risk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSubscriber struct {
	topic    string
	handler  mqttcommon.MessageHandler
	unsubbed []string
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error {
	f.topic = topic
	f.handler = handler
	return nil
}

func (f *fakeSubscriber) Unsubscribe(topics ...string) error {
	f.unsubbed = append(f.unsubbed, topics...)
	return nil
}

func TestMQTTIngestor_ForwardsValidScores(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	sub := &fakeSubscriber{}
	ing := NewMQTTIngestor(sub, client, zap.NewNop(), "risk/+/score", 1, testStream, "tenant-default")
	require.NoError(t, ing.Start(context.Background()))
	assert.Equal(t, "risk/+/score", sub.topic)

	require.NoError(t, sub.handler("risk/P-001/score", []byte(`{"risk_score": 64.5}`)))

	msgs, err := client.XRange(context.Background(), testStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var event models.ScoreEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &event))
	assert.Equal(t, "tenant-default", event.TenantID)
	assert.Equal(t, "P-001", event.PatientID)
	assert.JSONEq(t, "64.5", string(event.RiskScore))
	assert.Len(t, event.EventID, 36)

	require.NoError(t, ing.Stop())
	assert.Equal(t, []string{"risk/+/score"}, sub.unsubbed)
}

func TestMQTTIngestor_RejectsBadMessages(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ing := NewMQTTIngestor(&fakeSubscriber{}, client, zap.NewNop(), "risk/+/score", 1, testStream, "")
	ctx := context.Background()

	assert.Error(t, ing.handleMessage(ctx, "risk/P-001/vitals", []byte(`{"risk_score": 50}`)))
	assert.Error(t, ing.handleMessage(ctx, "risk/P-001/score", []byte(`not json`)))
	assert.ErrorIs(t, ing.handleMessage(ctx, "risk/P-001/score", []byte(`{"tenant_id":"t","risk_score":"50"}`)), errInvalidScore)
	assert.ErrorIs(t, ing.handleMessage(ctx, "risk/P-001/score", []byte(`{"tenant_id":"t","risk_score":-1}`)), errInvalidScore)
	// 无租户
	assert.Error(t, ing.handleMessage(ctx, "risk/P-001/score", []byte(`{"risk_score":50}`)))

	n, err := client.XLen(ctx, testStream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestPatientIDFromTopic(t *testing.T) {
	id, err := patientIDFromTopic("risk/P-9/score")
	require.NoError(t, err)
	assert.Equal(t, "P-9", id)

	_, err = patientIDFromTopic("score")
	assert.Error(t, err)
	_, err = patientIDFromTopic("risk//score")
	assert.Error(t, err)
}
