package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESSender struct {
	From   string
	client sesAPI
}

func NewSESSender(ctx context.Context, region, from string) (*SESSender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESSender{From: from, client: ses.NewFromConfig(cfg)}, nil
}

func (s *SESSender) Send(ctx context.Context, msg entity.OutgoingEmail) (string, error) {
	body := &types.Body{}
	if msg.IsHTML {
		body.Html = &types.Content{Data: aws.String(msg.Body)}
	} else {
		body.Text = &types.Content{Data: aws.String(msg.Body)}
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body:    body,
		},
		Source: aws.String(s.From),
	})
	if err != nil {
		return "", fmt.Errorf("ses send to %s: %w", msg.To, err)
	}
	return aws.ToString(out.MessageId), nil
}
