package notifier

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	config "github.com/Galaktikon/trust-cart/configs"
	"github.com/Galaktikon/trust-cart/internal/models"
)

type Notifier interface {
	Welcome(ctx context.Context, user models.User) error
}

type Nop struct{}

func (Nop) Welcome(context.Context, models.User) error { return nil }

type emailSender interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESNotifier struct {
	client emailSender
	sender string
}

func NewSESNotifier(ctx context.Context, cfg config.EmailConfig) (*SESNotifier, error) {
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("sender email address is not configured in environment variables")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return &SESNotifier{client: ses.NewFromConfig(awsCfg), sender: cfg.SenderEmail}, nil
}

// Welcome sends the registration e-mail.
func (n *SESNotifier) Welcome(ctx context.Context, user models.User) error {
	if user.Email == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	subject := "Welcome to TrustCart"

	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>Your TrustCart account is ready.</p>
            <p>%s</p>
            <p>Best regards,</p>
            <p>The TrustCart Team</p>
        </body>
        </html>`, user.DisplayName, roleLine(user.Role))

	bodyText := fmt.Sprintf(
		"Dear %s,\n\nYour TrustCart account is ready.\n%s\n\nBest regards,\nThe TrustCart Team",
		user.DisplayName, roleLine(user.Role))

	input := &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{user.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyHTML),
				},
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyText),
				},
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func roleLine(r models.Role) string {
	if r == models.RoleAdmin {
		return "Log in to open your store and start listing products."
	}
	return "Log in to start filling your cart."
}
