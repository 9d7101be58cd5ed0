package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/helporphan/donations-api/internal/aws"
)

const thankYouSubject = "Thank You for Your Generosity!"

// Mailer sends the thank-you message to a donor's contact address.
// It is an independent failure domain: only the notification worker calls it,
// never the request path of a commitment.
type Mailer struct {
	SES    aws.SESAPI
	Sender string
}

// NewMailer returns a Mailer sending from the given address.
func NewMailer(ses aws.SESAPI, sender string) *Mailer {
	return &Mailer{SES: ses, Sender: sender}
}

// SendThankYou delivers the commitment acknowledgement email.
func (m *Mailer) SendThankYou(ctx context.Context, donorName, contactEmail, itemName string) error {
	if contactEmail == "" {
		return fmt.Errorf("contact email is empty")
	}
	if m.Sender == "" {
		return fmt.Errorf("sender address not configured")
	}

	subject := thankYouSubject
	html := thankYouHTML(donorName, itemName)
	from := fmt.Sprintf("HelpOrphan <%s>", m.Sender)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &sestypes.Destination{
			ToAddresses: []string{contactEmail},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: &subject},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: &html},
				},
			},
		},
	}

	if _, err := m.SES.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func thankYouHTML(donorName, itemName string) string {
	donorName = html.EscapeString(donorName)
	itemName = html.EscapeString(itemName)
	return fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; padding: 20px; background-color: #f4f4f4;">
        <div style="background-color: #ffffff; padding: 25px; border-radius: 10px; border-top: 5px solid #00c497;">
          <h2 style="color: #00c497;">Hi %s,</h2>
          <p style="font-size: 16px; color: #333;">Thank you for committing to donate:</p>
          <p style="font-size: 20px; font-weight: bold; color: #333; background-color: #e6fff7; padding: 10px; border-radius: 5px; text-align: center;">
            %s
          </p>
          <p style="font-size: 16px; color: #333;">Your support makes a real, tangible difference in the lives of the children. We will be in touch shortly with next steps for dropping off or delivering the item.</p>
          <p style="font-size: 16px; color: #333; margin-top: 20px;">Stay amazing!</p>
          <p style="font-size: 14px; color: #666; margin-top: 5px;">- The HelpOrphan Team</p>
        </div>
      </div>`, donorName, itemName)
}
