package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"dressupapi/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/getsentry/sentry-go"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

type GoogleServiceProvider interface {
	ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
	GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error)
}

type GoogleService struct {
}

func (gs GoogleService) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, idToken, audience)
}

func (gs GoogleService) GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("https://api.revenuecat.com/v1/subscribers/%s", appUserId), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", os.Getenv("RC_API_KEY")))

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println(err)
		return nil, err
	}
	defer res.Body.Close()

	return io.ReadAll(res.Body)
}

func stringMapToInterfaceMap(stringMap map[string]string) map[string]interface{} {
	interfaceMap := make(map[string]interface{})
	for key, value := range stringMap {
		interfaceMap[key] = value
	}
	return interfaceMap
}

// PushMessages builds one message per active token.
func PushMessages(tokens []models.UserPushToken, title string, body string, customData map[string]string) []*messaging.Message {
	var iosCustomData map[string]interface{}
	if customData != nil {
		iosCustomData = stringMapToInterfaceMap(customData)
	}
	messages := make([]*messaging.Message, 0, len(tokens))
	for _, token := range tokens {
		message := &messaging.Message{
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Token: token.Token,
			Data:  customData,
		}
		if token.Platform == models.PlatformIOS {
			message.APNS = &messaging.APNSConfig{
				FCMOptions: &messaging.APNSFCMOptions{
					AnalyticsLabel: "dressup",
				},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						ContentAvailable: true,
						Alert: &messaging.ApsAlert{
							Title: title,
							Body:  body,
						},
						Sound: "default",
					},
					CustomData: iosCustomData,
				},
			}
		} else {
			message.Android = &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Priority:  messaging.AndroidNotificationPriority(messaging.PriorityMax),
					ChannelID: "dressup-reminders",
				},
				Data: customData,
			}
		}
		messages = append(messages, message)
	}
	return messages
}

// SendNotification pushes to every active device of the user. It returns the
// number of delivered messages.
func SendNotification(fbApp *firebase.App, db *gorm.DB, userId uint, title string, body string, customData map[string]string) (int, error) {
	var tokens []models.UserPushToken
	result := db.Model(models.UserPushToken{}).Where(
		"user_account_id = ? and active = true", userId,
	).Find(&tokens)
	if result.Error != nil {
		return 0, result.Error
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	client, err := fbApp.Messaging(context.Background())
	if err != nil {
		fmt.Println("Abort push: ", title)
		return 0, fmt.Errorf("messaging client: %w", err)
	}

	br, err := client.SendEach(context.Background(), PushMessages(tokens, title, body, customData))
	if err != nil {
		sentry.CaptureException(err)
		return 0, err
	}
	if br.FailureCount > 0 {
		log.Printf("[Push: %v] %v of %v failed", userId, br.FailureCount, len(tokens))
		for i, response := range br.Responses {
			if response != nil && !response.Success {
				fmt.Println(tokens[i].ID, response.Error)
			}
		}
	}
	return br.SuccessCount, nil
}

// PushNotifier sends through Firebase to the tokens stored for a user.
type PushNotifier struct {
	App *firebase.App
	DB  *gorm.DB
}

func (n PushNotifier) Notify(ctx context.Context, userID uint, title string, body string, data map[string]string) error {
	if n.App == nil {
		log.Printf("[Push: %v] firebase is not configured, skipping %q", userID, title)
		return nil
	}
	_, err := SendNotification(n.App, n.DB, userID, title, body, data)
	return err
}
