package controllers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"dressupapi/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func UIntToStr(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func GenerateUserToken(userPk string, c echo.Context, hours uint64) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * time.Duration(hours))),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		c.Logger().Errorf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func GenerateRefreshToken(userPk string) (string, error) {
	refreshToken := jwt.New(jwt.SigningMethodHS256)
	rtClaims := refreshToken.Claims.(jwt.MapClaims)
	rtClaims["sub"] = userPk
	rtClaims["exp"] = time.Now().Add(time.Hour * 24 * 30 * 12).Unix()
	rt, err := refreshToken.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", err
	}
	return rt, nil
}

// requestDeps pulls the per request dependencies set by SetupServer.
func requestDeps(c echo.Context) (models.UserAccount, *gorm.DB, error) {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return user, nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return user, nil, echo.NewHTTPError(http.StatusInternalServerError, "Database connection error")
	}
	return user, db, nil
}

func queueClient(c echo.Context) (*asynq.Client, bool) {
	client, ok := c.Get("__asynqclient").(*asynq.Client)
	return client, ok && client != nil
}

func queueInspector(c echo.Context) (*asynq.Inspector, bool) {
	inspector, ok := c.Get("__asynqinspector").(*asynq.Inspector)
	return inspector, ok && inspector != nil
}

func isFreePlan(user models.UserAccount) bool {
	return !user.HasActiveSubscription(time.Now())
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		fmt.Println(err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
