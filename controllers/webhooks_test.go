package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"dressupapi/dbhelper"
	"dressupapi/models"
	"dressupapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type alertRecorder struct {
	mu   sync.Mutex
	sent []string
}

func (a *alertRecorder) Send(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, text)
}

func webhookServer(t *testing.T, db *gorm.DB) (testServer, *alertRecorder) {
	t.Setenv("RC_SYNC_DELAY_SECONDS", "0")
	alerts := &alertRecorder{}
	aws := &test.AWSProviderMock{}
	cache := &test.URLCacheMock{}
	e := SetupServer(db, test.GoogleServiceMock{}, aws, nil, nil, nil, cache, test.WeatherMock{}, alerts)
	return testServer{e: e, aws: aws, cache: cache}, alerts
}

func rcEventBody(eventType string, appUserID string, extra map[string]interface{}) map[string]interface{} {
	event := map[string]interface{}{
		"app_id":               "app70fd013e95",
		"app_user_id":          appUserID,
		"country_code":         "PL",
		"environment":          "SANDBOX",
		"event_timestamp_ms":   1715405366686,
		"expiration_at_ms":     1715412566686,
		"id":                   "791C890E-B8AD-46C9-8290-13EAF5F14C9F",
		"original_app_user_id": appUserID,
		"period_type":          "NORMAL",
		"product_id":           "dressup_pro",
		"purchased_at_ms":      1715405366686,
		"store":                "APP_STORE",
		"type":                 eventType,
	}
	for k, v := range extra {
		event[k] = v
	}
	return map[string]interface{}{"api_version": "1.0", "event": event}
}

func sendEvent(server testServer, token string, body interface{}) *httptest.ResponseRecorder {
	return server.do(test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", token, body))
}

func TestWebhookInitialPurchase(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	server, alerts := webhookServer(t, db)
	user := test.FakeUser(db)

	rec := sendEvent(server, "Bearer fake", rcEventBody("INITIAL_PURCHASE", fmt.Sprint(user.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Pro is active")

	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.Equal(t, string(models.Pro), *updated.Subscription)
	require.NotNil(t, updated.ExpirationDate)
	assert.Equal(t, 2099, updated.ExpirationDate.Year())
	require.Len(t, alerts.sent, 1)
	assert.Contains(t, alerts.sent[0], "subscription update: pro")

	// renewals keep pro without alerting again
	rec = sendEvent(server, "Bearer fake", rcEventBody("RENEWAL", fmt.Sprint(user.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, alerts.sent, 1)
}

func TestWebhookExpirationAndCancellation(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	server, alerts := webhookServer(t, db)
	user := test.FakeUser(db)

	test.MakePremium(db, user)
	rec := sendEvent(server, "Bearer fake", rcEventBody("EXPIRATION", fmt.Sprint(user.ID), map[string]interface{}{"expiration_reason": "UNSUBSCRIBE"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "expire ok")
	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.Equal(t, string(models.Free), *updated.Subscription)

	test.MakePremium(db, user)
	rec = sendEvent(server, "Bearer fake", rcEventBody("CANCELLATION", fmt.Sprint(user.ID), map[string]interface{}{"cancel_reason": "BILLING_ERROR"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "cancel ok")
	updated = models.UserAccount{}
	db.First(&updated, user.ID)
	assert.Equal(t, string(models.Free), *updated.Subscription)

	require.Len(t, alerts.sent, 2)
	assert.Contains(t, alerts.sent[0], "EXPIRATION reason UNSUBSCRIBE")
	assert.Contains(t, alerts.sent[1], "CANCELLATION reason BILLING_ERROR")
}

func TestWebhookAnonymousUser(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	server, alerts := webhookServer(t, db)
	user := test.FakeUser(db)

	// the original id resolves an anonymous purchase
	body := rcEventBody("INITIAL_PURCHASE", "$RCAnonymousID:60ad7a0c84694890b4b272b5654efa1f", map[string]interface{}{"original_app_user_id": fmt.Sprint(user.ID)})
	rec := sendEvent(server, "Bearer fake", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.Equal(t, string(models.Pro), *updated.Subscription)

	anonymous := "$RCAnonymousID:60ad7a0c84694890b4b272b5654efa1f"
	rec = sendEvent(server, "Bearer fake", rcEventBody("INITIAL_PURCHASE", anonymous, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error unknown user")
	assert.Contains(t, alerts.sent[len(alerts.sent)-1], "Unknown user")

	rec = sendEvent(server, "Bearer fake", rcEventBody("INITIAL_PURCHASE", "999999999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookRejectsBadRequests(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	server, _ := webhookServer(t, db)
	user := test.FakeUser(db)

	rec := sendEvent(server, "Bearer wrong", rcEventBody("INITIAL_PURCHASE", fmt.Sprint(user.ID), nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = sendEvent(server, "Bearer fake", map[string]interface{}{"api_version": "1.0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = sendEvent(server, "Bearer fake", rcEventBody("TRANSFER", fmt.Sprint(user.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OK TRANSFER")
	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.Equal(t, string(models.Free), *updated.Subscription)
}

func TestProExpiration(t *testing.T) {
	expires, ok, err := proExpiration([]byte(`{"subscriber":{"entitlements":{"pro":{"expires_date":"2020-01-02T03:04:05Z"}}}}`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), expires)

	_, ok, err = proExpiration([]byte(`{"subscriber":{"entitlements":{}}}`))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = proExpiration([]byte(`{"subscriber":{"entitlements":{"pro":{"expires_date":null}}}}`))
	assert.Error(t, err)

	_, _, err = proExpiration([]byte(`not json`))
	assert.Error(t, err)
}
