package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"dressupapi/models"
	"dressupapi/services"

	firebase "firebase.google.com/go/v4"
	apple "github.com/Timothylock/go-signin-with-apple/apple"
	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const defaultAvatarURL = "https://pub-df730af6a36c46a58d6d948f149dae31.r2.dev/user-circle.png"

type AuthController struct {
	Google      services.GoogleServiceProvider
	FirebaseApp *firebase.App
	AWSService  services.AWSServiceProvider
}

func (m *AuthController) AuthRoutes(g *echo.Group, jwtMiddleware echo.MiddlewareFunc) {
	g.POST("/google", m.GoogleSignIn)
	g.POST("/apple", m.AppleSignIn)
	g.POST("/refresh-token", m.RefreshToken)

	g.GET("/me", m.Me, jwtMiddleware, UserMiddleware)
	g.POST("/settings", m.Settings, jwtMiddleware, UserMiddleware)
	g.POST("/register-push", m.RegisterPush, jwtMiddleware, UserMiddleware)
	g.POST("/delete-push", m.DeletePush, jwtMiddleware, UserMiddleware)
	g.POST("/delete-account", m.DeleteAccount, jwtMiddleware, UserMiddleware)
}

// completeSignIn issues the token pair for a signed in account.
func completeSignIn(c echo.Context, user *models.UserAccount, isNew bool) error {
	if user.Banned {
		return echo.ErrForbidden
	}
	refreshToken, err := GenerateRefreshToken(fmt.Sprint(user.ID))
	if err != nil {
		fmt.Println(err)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, models.SignInOut{
		Id:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		New:          isNew,
		Avatar:       user.AvatarURL,
		Subscription: user.Subscription,
		AccessToken:  GenerateUserToken(fmt.Sprint(user.ID), c, 72),
		RefreshToken: refreshToken,
	})
}

func newAccount(name, email, platform, ip, utmSource, avatar string) *models.UserAccount {
	free := string(models.Free)
	if avatar == "" {
		avatar = defaultAvatarURL
	}
	return &models.UserAccount{
		Name:                 name,
		Email:                email,
		Platform:             models.ScanPlatform(platform),
		LastIp:               ip,
		Status:               "FINISHED_AUTH",
		AvatarURL:            avatar,
		UTMSource:            utmSource,
		Subscription:         &free,
		ReceiveNotifications: true,
	}
}

func (m *AuthController) GoogleSignIn(c echo.Context) error {
	googleCreds := new(models.GoogleAuthSignIn)
	if err := c.Bind(googleCreds); err != nil {
		return echo.ErrBadRequest
	}
	if !models.ValidatePlatformRaw(googleCreds.Platform) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Please provide proper platform parameter"})
	}
	if err := c.Validate(googleCreds); err != nil {
		return err
	}

	payload, err := m.Google.ValidateIdToken(c.Request().Context(), googleCreds.IdToken, os.Getenv("GOOGLE_CLIENT_ID"))
	if err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't verify credentials"})
	}
	googleId, ok := payload.Claims["sub"].(string)
	if !ok {
		sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data %s", payload.Claims))
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't verify credentials"})
	}
	googleEmail, ok := payload.Claims["email"].(string)
	if !ok {
		sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data email %s", payload.Claims))
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't verify credentials"})
	}
	pictureUrl, _ := payload.Claims["picture"].(string)
	googleName, _ := payload.Claims["name"].(string)

	db := c.Get("__db").(*gorm.DB)
	var user models.UserAccount
	r := db.Where("google_id = ?", googleId).Limit(1).Find(&user)
	if r.Error != nil {
		return echo.ErrInternalServerError
	}
	if r.RowsAffected > 0 {
		return completeSignIn(c, &user, false)
	}

	r = db.Where("email = ?", googleEmail).Limit(1).Find(&user)
	if r.Error != nil {
		return echo.ErrInternalServerError
	}
	if r.RowsAffected > 0 {
		user.GoogleID = googleId
		if user.AvatarURL == "" {
			user.AvatarURL = pictureUrl
		}
		user.LastIp = c.RealIP()
		user.Platform = models.ScanPlatform(googleCreds.Platform)
		db.Save(&user)
		return completeSignIn(c, &user, false)
	}

	created := newAccount(googleName, googleEmail, googleCreds.Platform, c.RealIP(), googleCreds.UTMSource, pictureUrl)
	created.GoogleID = googleId
	if err := db.Create(created).Error; err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	fmt.Println("[Auth] New google account: ", googleEmail)
	return completeSignIn(c, created, true)
}

func (m *AuthController) AppleSignIn(c echo.Context) error {
	var req models.AppleAuthRequest
	if err := c.Bind(&req); err != nil {
		return echo.ErrBadRequest
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	teamID := os.Getenv("APPLE_TEAM_ID")
	keyID := os.Getenv("APPLE_KEY_ID")
	clientID := os.Getenv("APPLE_CLIENT_ID")
	secret, err := services.DecodeBase64EnvPrivateKey("APPLE_SIGNIN_PKEY_BASE64")
	if err != nil {
		log.Println("Error getting Apple private key:", err)
		return echo.ErrInternalServerError
	}
	secret, err = apple.GenerateClientSecret(secret, teamID, clientID, keyID)
	if err != nil {
		log.Println("Error generating Apple client secret:", err)
		return echo.ErrInternalServerError
	}

	client := apple.New()
	vReq := apple.AppValidationTokenRequest{
		ClientID:     clientID,
		ClientSecret: secret,
		Code:         req.AuthorizationCode,
	}
	var resp apple.ValidationResponse
	if err := client.VerifyAppToken(c.Request().Context(), vReq, &resp); err != nil {
		fmt.Println("error verifying: " + err.Error())
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't verify credentials"})
	}
	if resp.Error != "" {
		fmt.Printf("apple returned an error: %s - %s\n", resp.Error, resp.ErrorDescription)
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't verify credentials through Apple"})
	}

	appleId, err := apple.GetUniqueID(resp.IDToken)
	if err != nil {
		fmt.Println("failed to get unique ID: " + err.Error())
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't get your unique identifier"})
	}
	claim, err := apple.GetClaims(resp.IDToken)
	if err != nil {
		fmt.Println("failed to get claims: " + err.Error())
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't get your information"})
	}
	appleEmail, _ := (*claim)["email"].(string)

	db := c.Get("__db").(*gorm.DB)
	var user models.UserAccount
	var r *gorm.DB
	if appleEmail == "" {
		r = db.Where("apple_id = ?", appleId).Limit(1).Find(&user)
	} else {
		r = db.Where("apple_id = ? or email = ?", appleId, appleEmail).Limit(1).Find(&user)
	}
	if r.Error != nil {
		return echo.ErrInternalServerError
	}
	if r.RowsAffected > 0 {
		if user.AppleID != appleId {
			user.AppleID = appleId
			user.LastIp = c.RealIP()
			db.Save(&user)
		}
		return completeSignIn(c, &user, false)
	}
	if appleEmail == "" {
		fmt.Println("[Apple signin] New user but no email in claims")
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Apple did not share an email for this first sign in, please try again."})
	}

	created := newAccount(appleEmail, appleEmail, req.Platform, c.RealIP(), req.UTMSource, "")
	created.AppleID = appleId
	if err := db.Create(created).Error; err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	return completeSignIn(c, created, true)
}

func (m *AuthController) RefreshToken(c echo.Context) error {
	tokenReq := new(models.RefreshTokenIn)
	if err := c.Bind(tokenReq); err != nil {
		return echo.ErrBadRequest
	}
	if tokenReq.RefreshToken == "" {
		return echo.ErrBadRequest
	}
	token, err := jwt.Parse(tokenReq.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		fmt.Println(err)
		return echo.ErrBadRequest
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return echo.ErrBadRequest
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return echo.ErrBadRequest
	}
	userId, err := strconv.Atoi(sub)
	if err != nil || userId < 1 {
		fmt.Println("Refresh: bad sub", sub)
		return echo.ErrBadRequest
	}

	db := c.Get("__db").(*gorm.DB)
	var user models.UserAccount
	result := db.First(&user, userId)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return echo.ErrForbidden
	}
	if result.Error != nil {
		fmt.Println("Error getting user while refreshing token", userId)
		return echo.ErrInternalServerError
	}
	if user.Banned || user.ConfirmedDeleteDate != nil {
		return echo.ErrUnauthorized
	}
	rt, err := GenerateRefreshToken(sub)
	if err != nil {
		fmt.Println("Error refreshing token ", err)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  GenerateUserToken(sub, c, 72),
		"refresh_token": rt,
	})
}

func (m *AuthController) Me(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var closetCount, profileCount int64
	if err := db.Model(&models.Clothing{}).Where("owner_id = ?", user.ID).Count(&closetCount).Error; err != nil {
		return echo.ErrInternalServerError
	}
	if err := db.Model(&models.StoredProfile{}).Where("owner_id = ?", user.ID).Count(&profileCount).Error; err != nil {
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, models.UserMeOut{
		Id:                   user.ID,
		Name:                 user.Name,
		Email:                user.Email,
		AvatarURL:            user.AvatarURL,
		Subscription:         user.Subscription,
		Premium:              user.HasActiveSubscription(time.Now()),
		ReceiveNotifications: user.ReceiveNotifications,
		ClosetCount:          closetCount,
		HasColorProfile:      profileCount > 0,
	})
}

func (m *AuthController) Settings(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	settingsIn := new(models.UserSettingsIn)
	if err := c.Bind(settingsIn); err != nil {
		return echo.ErrBadRequest
	}
	user.ReceiveNotifications = settingsIn.ReceiveNotifications
	if err := db.Model(&user).Update("receive_notifications", user.ReceiveNotifications).Error; err != nil {
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, settingsIn)
}

func (m *AuthController) RegisterPush(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	tokenRequest := new(models.UserPushIn)
	if err := bindAndValidate(c, tokenRequest); err != nil {
		return err
	}
	pushData := models.UserPushToken{
		Platform:      models.ScanPlatform(tokenRequest.Platform),
		Token:         tokenRequest.Token,
		UserAccountID: user.ID,
		Active:        true,
	}
	// the same device may be signed in to several accounts
	result := db.Where("token = ? and user_account_id = ?", tokenRequest.Token, user.ID).FirstOrCreate(&pushData)
	if result.Error != nil {
		log.Println(result.Error)
		return echo.ErrInternalServerError
	}
	if !pushData.Active {
		db.Model(&pushData).Update("active", true)
	}
	fmt.Println("Push id ", pushData.ID, " Platform: ", pushData.Platform, "User ID:", pushData.UserAccountID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "registered",
		"push_id": pushData.ID,
	})
}

func (m *AuthController) DeletePush(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	tokenRequest := new(models.UserPushIn)
	if err := bindAndValidate(c, tokenRequest); err != nil {
		return err
	}
	result := db.Where("token = ? and user_account_id = ? and platform = ?", tokenRequest.Token, user.ID, tokenRequest.Platform).Delete(&models.UserPushToken{})
	if result.Error != nil {
		log.Println(result.Error)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "deleted",
		"deleted": result.RowsAffected > 0,
	})
}

func (m *AuthController) DeleteAccount(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := db.Model(&user).Update("confirmed_delete_date", &now).Error; err != nil {
		return echo.ErrInternalServerError
	}
	db.Where("user_account_id = ?", user.ID).Delete(&models.UserPushToken{})
	if user.SelfieKey != nil && m.AWSService != nil {
		bucketName := services.GetEnv("R2_BUCKET_NAME", "")
		if err := m.AWSService.DeleteObject(context.Background(), bucketName, *user.SelfieKey); err != nil {
			sentry.CaptureException(err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "account scheduled for deletion",
	})
}
