// internal/review/notify.go
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	awsclient "menu-classifier/internal/common/aws"
	"menu-classifier/internal/common/config"
	"menu-classifier/internal/common/logger"
	"menu-classifier/internal/models"
)

// Notifier tells human reviewers that a session is waiting on them.
// Delivery is best effort; a failed notification never fails the
// classification request.
type Notifier interface {
	SessionOpened(ctx context.Context, session *models.ReviewSession)
}

// NopNotifier is used when no notification channel is configured.
type NopNotifier struct{}

func (NopNotifier) SessionOpened(context.Context, *models.ReviewSession) {}

// AWSNotifier fans a review alert out over SNS and SES, whichever are
// enabled in config.
type AWSNotifier struct {
	sns    *awsclient.SNSClient
	ses    *awsclient.SESClient
	config config.NotificationConfig
	logger logger.Logger
}

func NewAWSNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*AWSNotifier, error) {
	n := &AWSNotifier{config: cfg, logger: log}

	if cfg.SNS.Enabled {
		client, err := awsclient.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create SNS client: %w", err)
		}
		n.sns = client
	}
	if cfg.Email.Enabled {
		client, err := awsclient.NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create SES client: %w", err)
		}
		n.ses = client
	}
	return n, nil
}

func (n *AWSNotifier) SessionOpened(ctx context.Context, session *models.ReviewSession) {
	subject := fmt.Sprintf("Menu review needed: %d uncertain items", len(session.Uncertain))
	body := n.buildBody(session)

	if n.sns != nil {
		_, err := n.sns.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(n.config.SNS.TopicARN),
			Subject:  aws.String(subject),
			Message:  aws.String(body),
		})
		if err != nil {
			n.logger.Warn("Failed to publish review notification to SNS", map[string]interface{}{
				"request_id": session.RequestID,
				"error":      err.Error(),
			})
		}
	}

	if n.ses != nil && len(n.config.Email.Reviewers) > 0 {
		_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
			Source: aws.String(n.config.Email.FromEmail),
			Destination: &sestypes.Destination{
				ToAddresses: n.config.Email.Reviewers,
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
		})
		if err != nil {
			n.logger.Warn("Failed to send review notification email", map[string]interface{}{
				"request_id": session.RequestID,
				"error":      err.Error(),
			})
		}
	}
}

func (n *AWSNotifier) buildBody(session *models.ReviewSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request %s needs human review before %s.\n\nUncertain items:\n",
		session.RequestID, session.ExpiresAt.Format("15:04 MST"))
	for _, v := range session.Uncertain {
		fmt.Fprintf(&b, "  - %s (confidence %.2f): %s\n", v.Item.Name, v.Confidence, v.Rationale)
	}
	return b.String()
}
