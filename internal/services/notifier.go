package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/pkg/logger"
)

// Notifier tells account holders about changes to their account.
type Notifier interface {
	UserCreated(ctx context.Context, user *models.User) error
	RoleChanged(ctx context.Context, user *models.User, previous models.Role) error
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func (NoopNotifier) UserCreated(context.Context, *models.User) error { return nil }

func (NoopNotifier) RoleChanged(context.Context, *models.User, models.Role) error { return nil }

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends notifications using AWS SES
type SESNotifier struct {
	client      SESAPI
	fromAddress string
	logger      *slog.Logger
}

// NewSESNotifier loads the default AWS config for region.
func NewSESNotifier(ctx context.Context, region, fromAddress string, log *slog.Logger) (*SESNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSESNotifierWithClient(ses.NewFromConfig(cfg), fromAddress, log), nil
}

func NewSESNotifierWithClient(client SESAPI, fromAddress string, log *slog.Logger) *SESNotifier {
	return &SESNotifier{client: client, fromAddress: fromAddress, logger: log}
}

func (n *SESNotifier) UserCreated(ctx context.Context, user *models.User) error {
	body := fmt.Sprintf(`Hello %s,

An administrator created an account for you with the %s role.

This is an automated message. Please do not reply to this email.
`, displayName(user), user.Role)

	return n.send(ctx, user.Email, "Your account has been created", body)
}

func (n *SESNotifier) RoleChanged(ctx context.Context, user *models.User, previous models.Role) error {
	body := fmt.Sprintf(`Hello %s,

Your role has changed from %s to %s.

If you did not expect this change, contact your administrator.
`, displayName(user), previous, user.Role)

	return n.send(ctx, user.Email, "Your access has changed", body)
}

func (n *SESNotifier) send(ctx context.Context, to, subject, text string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(text)},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		n.logger.Error("failed to send email via SES",
			slog.String("email", logger.SanitizedEmail(to)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Info("notification email sent",
		slog.String("email", logger.SanitizedEmail(to)),
		slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
