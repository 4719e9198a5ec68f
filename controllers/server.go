package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"dressupapi/models"
	"dressupapi/services"
	"dressupapi/suitcase"

	firebase "firebase.google.com/go/v4"
	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// errorHandler renders every error as {"error": message}.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprint(httpErr.Message)
	} else {
		log.Println("[API] unhandled error:", err)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"error": message})
	}
	if err != nil {
		log.Println("[API] could not write error response:", err)
	}
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("style", models.ValidateStyle)
	v.RegisterValidation("category", models.ValidateCategory)
	v.RegisterValidation("scope", models.ValidateShoppingScope)
	return &CustomValidator{validator: v}
}

func SetupServer(
	db *gorm.DB,
	googleService services.GoogleServiceProvider,
	awsService services.AWSServiceProvider,
	firebaseApp *firebase.App,
	asynqClient *asynq.Client,
	asynqInspector *asynq.Inspector,
	urlCache services.URLCacheServiceProvider,
	weather suitcase.WeatherService,
	alerts AlertSender,
) *echo.Echo {
	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize AWS provider: S3")
	}

	e := echo.New()
	e.HTTPErrorHandler = errorHandler
	e.Validator = NewValidator()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			if asynqClient != nil {
				c.Set("__asynqclient", asynqClient)
			}
			if asynqInspector != nil {
				c.Set("__asynqinspector", asynqInspector)
			}
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	jwtMiddleware := echojwt.JWT([]byte(os.Getenv("JWT_SECRET")))

	authController := AuthController{Google: googleService, FirebaseApp: firebaseApp, AWSService: awsService}
	authController.AuthRoutes(e.Group("/auth"), jwtMiddleware)

	closetController := ClosetController{AWSService: awsService, URLCache: urlCache}
	closetController.ClosetRoutes(e.Group("/closet", jwtMiddleware, UserMiddleware))

	looksController := LooksController{}
	looksController.LooksRoutes(e.Group("/looks", jwtMiddleware, UserMiddleware))

	profileController := ProfileController{AWSService: awsService}
	profileController.ProfileRoutes(e.Group("/profile", jwtMiddleware, UserMiddleware))

	suitcaseController := SuitcaseController{Weather: weather, Planner: suitcase.NewPlanner(weather)}
	suitcaseController.SuitcaseRoutes(e.Group("/suitcase", jwtMiddleware, UserMiddleware))

	shopController := ShopController{}
	shopController.ShopRoutes(e.Group("/shop", jwtMiddleware, UserMiddleware))

	webhooksController := WebhooksController{
		Google:      googleService,
		FirebaseApp: firebaseApp,
		Alerts:      alerts,
		SyncDelay:   time.Duration(services.GetEnvInt("RC_SYNC_DELAY_SECONDS", 4)) * time.Second,
	}
	webhooksController.SetupRoutes(e.Group("/webhooks"))

	return e
}
