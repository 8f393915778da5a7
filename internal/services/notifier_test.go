package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/warden/internal/models"
)

func TestSESNotifier_RoleChanged(t *testing.T) {
	var input *ses.SendEmailInput
	client := &MockSESClient{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			input = params
			return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, nil
		},
	}
	n := NewSESNotifierWithClient(client, "noreply@example.com", discardLogger())

	err := n.RoleChanged(context.Background(), &models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin}, models.RoleViewer)
	require.NoError(t, err)

	require.NotNil(t, input)
	assert.Equal(t, "noreply@example.com", aws.ToString(input.Source))
	assert.Equal(t, []string{"ada@example.com"}, input.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(input.Message.Body.Text.Data), "from Viewer to Admin")
}

func TestSESNotifier_UserCreatedError(t *testing.T) {
	client := &MockSESClient{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	n := NewSESNotifierWithClient(client, "noreply@example.com", discardLogger())

	err := n.UserCreated(context.Background(), &models.User{Email: "ada@example.com", Role: models.RoleViewer})
	assert.ErrorContains(t, err, "throttled")
}
