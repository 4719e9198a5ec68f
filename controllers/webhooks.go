package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"dressupapi/models"
	"dressupapi/services"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const rcTimeLayout = "2006-01-02T15:04:05Z"

// AlertSender posts operator alerts, the Telegram admin chat in production.
type AlertSender interface {
	Send(text string)
}

type WebhooksController struct {
	Google      services.GoogleServiceProvider
	FirebaseApp *firebase.App
	Alerts      AlertSender
	// RevenueCat needs a moment before the subscriber endpoint reflects the event
	SyncDelay time.Duration
}

type rcEvent struct {
	Type              string `json:"type"`
	AppUserID         string `json:"app_user_id"`
	OriginalAppUserID string `json:"original_app_user_id"`
	PeriodType        string `json:"period_type"`
	CancelReason      string `json:"cancel_reason"`
	ExpirationReason  string `json:"expiration_reason"`
}

type rcSubscriber struct {
	Subscriber struct {
		Entitlements map[string]struct {
			ExpiresDate *string `json:"expires_date"`
		} `json:"entitlements"`
	} `json:"subscriber"`
}

func (wc *WebhooksController) SetupRoutes(g *echo.Group) {
	g.POST("/rc-subscription-webhooks", wc.SubscriptionEvent)
}

func (wc *WebhooksController) alert(text string) {
	if wc.Alerts != nil {
		wc.Alerts.Send(text)
	}
}

func (wc *WebhooksController) push(db *gorm.DB, userID uint, title string, body string) {
	if wc.FirebaseApp == nil {
		return
	}
	if _, err := services.SendNotification(wc.FirebaseApp, db, userID, title, body, nil); err != nil {
		fmt.Println("[Webhook] push failed for user", userID, err)
	}
}

func isAnonymous(appUserID string) bool {
	return strings.Contains(appUserID, "$RCAnonymousID")
}

// proExpiration reads the expiry of the pro entitlement. ok is false when the
// subscriber has no pro entitlement at all.
func proExpiration(payload []byte) (expires time.Time, ok bool, err error) {
	var status rcSubscriber
	if err := json.Unmarshal(payload, &status); err != nil {
		return time.Time{}, false, fmt.Errorf("decode subscriber: %w", err)
	}
	pro, found := status.Subscriber.Entitlements["pro"]
	if !found {
		return time.Time{}, false, nil
	}
	if pro.ExpiresDate == nil {
		return time.Time{}, false, errors.New("pro entitlement without expires_date")
	}
	expires, err = time.Parse(rcTimeLayout, *pro.ExpiresDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse expires_date: %w", err)
	}
	return expires, true, nil
}

// SubscriptionEvent syncs the local plan of a user with RevenueCat.
func (wc *WebhooksController) SubscriptionEvent(c echo.Context) error {
	if c.Request().Header.Get("Authorization") != "Bearer "+os.Getenv("RC_WEBHOOK_TOKEN") {
		fmt.Println("[Malicious] IP: ", c.RealIP(), "User agent: ", c.Request().Header.Get("User-Agent"))
		return echo.ErrUnauthorized
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return echo.ErrInternalServerError
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.ErrInternalServerError
	}
	var envelope struct {
		Event *rcEvent `json:"event"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Event == nil {
		fmt.Println("[Webhook] cannot parse event: ", string(body))
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot parse event")
	}
	event := envelope.Event
	fmt.Println("[Webhook] event", event.Type, "for", event.AppUserID)

	if event.Type == "TRANSFER" {
		return c.JSON(http.StatusOK, echo.Map{"message": "OK TRANSFER"})
	}

	appUserID := event.AppUserID
	if isAnonymous(appUserID) {
		appUserID = event.OriginalAppUserID
	}
	userID, err := strconv.ParseUint(appUserID, 10, 32)
	if isAnonymous(appUserID) || err != nil {
		fmt.Println("[Webhook] could not resolve user", appUserID)
		wc.alert(fmt.Sprintf("Unknown user %s event: %s", appUserID, event.Type))
		return c.JSON(http.StatusOK, echo.Map{"message": "Error unknown user"})
	}
	var user models.UserAccount
	if err := db.First(&user, userID).Error; err != nil {
		fmt.Println("[Webhook] no user to update", appUserID)
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	free := string(models.Free)
	switch event.Type {
	case "EXPIRATION":
		user.Subscription = &free
		db.Save(&user)
		wc.alert(fmt.Sprintf("🛑 %s(%v) %s reason %s", user.Name, user.ID, event.Type, event.ExpirationReason))
		wc.push(db, user.ID, "Subscription expired", "Your closet stays with you. Subscribe again to keep planning unlimited trips! 🧳")
		return c.JSON(http.StatusOK, echo.Map{"message": "expire ok"})
	case "CANCELLATION":
		user.Subscription = &free
		db.Save(&user)
		wc.alert(fmt.Sprintf("🛑 %s(%v) %s reason %s", user.Name, user.ID, event.Type, event.CancelReason))
		switch event.CancelReason {
		case "UNSUBSCRIBE":
			wc.push(db, user.ID, "Subscription cancelled", "Tell us what to improve and get a discount on your next month 👗")
		case "BILLING_ERROR":
			wc.push(db, user.ID, "Payment error", "Please update your payment to keep your subscription active! 😮")
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "cancel ok"})
	}

	if wc.SyncDelay > 0 {
		time.Sleep(wc.SyncDelay)
	}
	payload, err := wc.Google.GetUserSubscriptionStatus(c.Request().Context(), appUserID)
	if err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	expires, hasPro, err := proExpiration(payload)
	if err != nil {
		fmt.Println("[Webhook] subscriber status of", appUserID, err)
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}

	if hasPro && expires.After(time.Now()) {
		pro := string(models.Pro)
		user.Subscription = &pro
		user.ExpirationDate = &expires
		db.Save(&user)
		if event.Type == "INITIAL_PURCHASE" {
			wc.alert(fmt.Sprintf("🎉⚡️🔥 %s(%v) subscription update: %s", user.Name, user.ID, pro))
		}
		if event.PeriodType == "PROMOTIONAL" {
			wc.push(db, user.ID, "Promo activated 🎉", fmt.Sprintf("Your Pro subscription is now active until %s", expires.Format("2006-01-02")))
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Pro is active"})
	}

	fmt.Println("[Webhook] no active entitlements, updating backend sub", appUserID)
	user.Subscription = &free
	if hasPro {
		user.ExpirationDate = &expires
	}
	db.Save(&user)
	wc.alert(fmt.Sprintf("⚠️ %s(%v) subscription updated: %s %s", user.Name, user.ID, free, event.Type))
	return c.JSON(http.StatusOK, echo.Map{"message": "OK"})
}
