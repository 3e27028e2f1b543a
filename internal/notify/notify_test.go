package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/dealmatch/internal/entity"
)

type mockSES struct {
	mock.Mock
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	return &ses.SendEmailOutput{}, args.Error(0)
}

func participants() []entity.User {
	return []entity.User{
		{ID: "s", Email: "seller@example.com", FirstName: "Sam"},
		{ID: "b", Email: "buyer@example.com"},
	}
}

func TestSESNotifier_DealCreated(t *testing.T) {
	client := new(mockSES)
	client.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return *in.Source == "deals@example.com" && len(in.Destination.ToAddresses) == 1 &&
			*in.Message.Subject.Data == "You have a new deal"
	})).Return(nil).Twice()

	n := &SESNotifier{client: client, sender: "deals@example.com"}
	err := n.DealCreated(context.Background(), entity.Deal{ID: "d1", CurrentStage: entity.StageInitialDiscussion}, participants())
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSESNotifier_JoinsFailures(t *testing.T) {
	client := new(mockSES)
	client.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	n := &SESNotifier{client: client, sender: "deals@example.com"}
	err := n.DealStageChanged(context.Background(), entity.Deal{ID: "d1", CurrentStage: entity.StageClosing}, participants())
	assert.ErrorContains(t, err, "seller@example.com")
	assert.ErrorContains(t, err, "buyer@example.com")
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	assert.NoError(t, n.DealCreated(context.Background(), entity.Deal{ID: "d1"}, participants()))
	entries := logs.FilterMessage("deal created").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "d1", entries[0].ContextMap()["deal_id"])
	}
}

func TestStageLabel(t *testing.T) {
	assert.Equal(t, "Financial Review", stageLabel(entity.StageFinancialReview))
	assert.Equal(t, "cancelled", stageLabel(entity.StageCancelled))
}
