// Package notify tells deal participants about deal lifecycle events.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"github.com/octobees/dealmatch/internal/entity"
	"github.com/octobees/dealmatch/internal/service/workflow"
)

// Notifier delivers deal notifications to participants.
type Notifier interface {
	DealCreated(ctx context.Context, deal entity.Deal, recipients []entity.User) error
	DealStageChanged(ctx context.Context, deal entity.Deal, recipients []entity.User) error
}

// LogNotifier only logs; used when no mail transport is configured.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier builds a LogNotifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) DealCreated(_ context.Context, deal entity.Deal, recipients []entity.User) error {
	n.log.Info("deal created", zap.String("deal_id", deal.ID), zap.Strings("recipients", emails(recipients)))
	return nil
}

func (n *LogNotifier) DealStageChanged(_ context.Context, deal entity.Deal, recipients []entity.User) error {
	n.log.Info("deal stage changed", zap.String("deal_id", deal.ID), zap.String("stage", string(deal.CurrentStage)),
		zap.Strings("recipients", emails(recipients)))
	return nil
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier emails participants through Amazon SES.
type SESNotifier struct {
	client sesAPI
	sender string
}

// NewSESNotifier loads the default AWS credential chain for region.
func NewSESNotifier(ctx context.Context, region, sender string) (*SESNotifier, error) {
	if sender == "" {
		return nil, errors.New("ses sender address is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESNotifier{client: ses.NewFromConfig(cfg), sender: sender}, nil
}

func (n *SESNotifier) DealCreated(ctx context.Context, deal entity.Deal, recipients []entity.User) error {
	subject := "You have a new deal"
	body := fmt.Sprintf("Both sides accepted the match. Deal %s is now in %s.\nNext milestone: %s",
		deal.ID, stageLabel(deal.CurrentStage), deal.NextMilestone)
	return n.sendAll(ctx, recipients, subject, body)
}

func (n *SESNotifier) DealStageChanged(ctx context.Context, deal entity.Deal, recipients []entity.User) error {
	subject := "Deal moved to " + stageLabel(deal.CurrentStage)
	body := fmt.Sprintf("Deal %s is now in %s (%d%% complete).", deal.ID, stageLabel(deal.CurrentStage), deal.StageProgress)
	return n.sendAll(ctx, recipients, subject, body)
}

func (n *SESNotifier) sendAll(ctx context.Context, recipients []entity.User, subject, body string) error {
	var errs []error
	for _, to := range recipients {
		if to.Email == "" {
			continue
		}
		_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
			Destination: &types.Destination{ToAddresses: []string{to.Email}},
			Message: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(greeting(to) + body)},
				},
			},
			Source: aws.String(n.sender),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("email %s: %w", to.Email, err))
		}
	}
	return errors.Join(errs...)
}

func stageLabel(stage entity.DealStage) string {
	if info, ok := workflow.Info(stage); ok {
		return info.Label
	}
	return strings.ReplaceAll(string(stage), "_", " ")
}

func greeting(u entity.User) string {
	if u.FirstName == "" {
		return "Hello,\n\n"
	}
	return "Hello " + u.FirstName + ",\n\n"
}

func emails(users []entity.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Email)
	}
	return out
}
