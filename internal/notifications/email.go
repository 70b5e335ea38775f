package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailSender delivers one email. Implementations own transport concerns
// only; queuing and bookkeeping stay in the Service.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type sesSender struct {
	client *sesv2.Client
	from   string
}

// NewSESSender builds an EmailSender over Amazon SES.
func NewSESSender(ctx context.Context, region, from string) (EmailSender, error) {
	if from == "" {
		return nil, fmt.Errorf("sender address required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &sesSender{
		client: sesv2.NewFromConfig(awsCfg),
		from:   from,
	}, nil
}

func (s *sesSender) Send(ctx context.Context, to, subject, body string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
