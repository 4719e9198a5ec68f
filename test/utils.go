package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"time"

	"dressupapi/models"
	"dressupapi/suitcase"

	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func NewJSONAuthRequestCustomAuth(method string, target string, authorizationString string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", authorizationString)
	return req
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	return FakeUserV2(db, "OurName", "email@example.com")
}

func FakeUserV2(db *gorm.DB, userName string, email string) *models.UserAccount {
	if email == "" {
		email = "email@example.com"
	}
	free := string(models.Free)
	user := &models.UserAccount{
		Name:                 userName,
		Email:                email,
		GoogleID:             "12232" + email,
		Platform:             models.PlatformIOS,
		LastIp:               "123.122.122.122",
		Status:               "FINISHED_AUTH",
		AvatarURL:            "pictureurl",
		Subscription:         &free,
		ReceiveNotifications: true,
	}
	db.Create(&user)
	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      "android",
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU-rqG1sxS8_WCF5cGZchf",
		Active:        true,
	}
	db.Save(&tokenDb)
	db.First(&user, user.ID)
	return user
}

// MakePremium switches the user to an active paid plan.
func MakePremium(db *gorm.DB, user *models.UserAccount) {
	pro := string(models.Pro)
	expires := time.Now().Add(30 * 24 * time.Hour)
	user.Subscription = &pro
	user.ExpirationDate = &expires
	db.Save(user)
}

func NewRefString(data string) *string {
	return &data
}

type GoogleServiceMock struct{}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {
	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":   "fake@example.com",
		"picture": "pictureurl",
		"name":    "Fake Name",
		"sub":     "123googleid",
	}}, nil
}

func (gsm GoogleServiceMock) GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error) {
	data := `
	{
		"request_date": "2024-05-11T06:50:56Z",
		"subscriber": {
		  "entitlements": {
			"pro": {
			  "expires_date": "2099-05-11T06:51:15Z",
			  "grace_period_expires_date": null,
			  "product_identifier": "dressup_pro",
			  "purchase_date": "2024-05-11T06:49:05Z"
			}
		  },
		  "first_seen": "2024-05-07T12:41:57Z",
		  "original_app_user_id": "$RCAnonymousID:60ad7a0c84694890b4b272b5654efa1f",
		  "subscriptions": {}
		}
	  }
	  `
	return []byte(data), nil
}

type AWSProviderMock struct {
	MockUrl string

	mu      sync.Mutex
	Deleted []string
}

func (awsService *AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService *AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService *AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	if awsService.MockUrl != "" {
		return awsService.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/read/%s", fileKey), nil
}

func (awsService *AWSProviderMock) DeleteObject(ctx context.Context, bucketName, fileKey string) error {
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	awsService.Deleted = append(awsService.Deleted, fileKey)
	return nil
}

type URLCacheMock struct {
	mu          sync.Mutex
	Invalidated []string
}

func (m *URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", nil
	}
	return "https://cached.example.com/" + objectKey, nil
}

func (m *URLCacheMock) Invalidate(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidated = append(m.Invalidated, objectKey)
	return nil
}

// WeatherMock answers with a fixed forecast built per requested day.
type WeatherMock struct {
	Locations []suitcase.GeoLocation
	Low       float64
	High      float64
	Rain      int
	Err       error
}

func (w WeatherMock) SearchDestination(ctx context.Context, query string) ([]suitcase.GeoLocation, error) {
	if strings.TrimSpace(query) == "" {
		return []suitcase.GeoLocation{}, nil
	}
	return w.Locations, nil
}

func (w WeatherMock) FetchForecast(ctx context.Context, location suitcase.GeoLocation, start, end time.Time) ([]suitcase.DailyForecast, error) {
	if w.Err != nil {
		return nil, w.Err
	}
	var forecasts []suitcase.DailyForecast
	for day := suitcase.Day(start); !day.After(suitcase.Day(end)); day = day.AddDate(0, 0, 1) {
		forecasts = append(forecasts, suitcase.DailyForecast{
			Date:                     day,
			MinTemperature:           w.Low,
			MaxTemperature:           w.High,
			PrecipitationProbability: w.Rain,
		})
	}
	return forecasts, nil
}

// NotifierMock records pushes instead of sending them.
type NotifierMock struct {
	mu   sync.Mutex
	Sent []string
}

func (n *NotifierMock) Notify(ctx context.Context, userID uint, title string, body string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, fmt.Sprintf("%d:%s:%s", userID, title, data["look_id"]))
	return nil
}
