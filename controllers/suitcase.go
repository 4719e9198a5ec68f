package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"dressupapi/fashion"
	"dressupapi/models"
	"dressupapi/services"
	"dressupapi/suitcase"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	defaultFreeTripLimit = 1
	planTimeout          = 20 * time.Second
)

type SuitcaseController struct {
	Weather suitcase.DestinationFinder
	Planner *suitcase.Planner
}

func (controller *SuitcaseController) SuitcaseRoutes(g *echo.Group) {
	g.GET("/destinations", controller.Destinations)
	g.POST("/plans", controller.Prepare)
	g.POST("/plans/:planId/confirm", controller.Confirm)
	g.DELETE("/plans/:planId", controller.Discard)
	g.GET("/plans", controller.List)
}

func (controller *SuitcaseController) Destinations(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusOK, []suitcase.GeoLocation{})
	}
	locations, err := controller.Weather.SearchDestination(c.Request().Context(), query)
	if err != nil {
		log.Printf("[Suitcase] destination search '%s' failed: %v", query, err)
		sentry.CaptureException(err)
		return echo.NewHTTPError(http.StatusBadGateway, "Destination search is unavailable, please try again")
	}
	if locations == nil {
		locations = []suitcase.GeoLocation{}
	}
	return c.JSON(http.StatusOK, locations)
}

func toActivities(in []models.ActivityIn) []suitcase.TravelActivity {
	activities := make([]suitcase.TravelActivity, 0, len(in))
	for _, activity := range in {
		var hints []fashion.Style
		for _, hint := range activity.StyleHints {
			if style, ok := fashion.ParseStyle(hint); ok {
				hints = append(hints, style)
			}
		}
		activities = append(activities, suitcase.TravelActivity{Name: activity.Name, StyleHints: hints})
	}
	return activities
}

// Prepare builds a draft plan from the forecast. Nothing is stored when the
// forecast cannot be fetched.
func (controller *SuitcaseController) Prepare(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var req models.TravelPlanIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Location.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Pick a destination first")
	}
	start, err := suitcase.ParseDate(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Start date must look like 2006-01-02")
	}
	end, err := suitcase.ParseDate(req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "End date must look like 2006-01-02")
	}
	closet, err := closetItems(db, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch closet")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), planTimeout)
	defer cancel()
	plan, err := controller.Planner.Prepare(ctx, suitcase.PlanRequest{
		Location:   req.Location,
		StartDate:  start,
		EndDate:    end,
		Activities: toActivities(req.Activities),
		Closet:     closet,
		Profile:    loadProfile(db, user.ID),
	})
	switch {
	case errors.Is(err, suitcase.ErrInvalidDateRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, suitcase.ErrForecastUnavailable):
		log.Printf("[Suitcase: %v] %v", user.ID, err)
		sentry.CaptureException(err)
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "Weather forecast is unavailable, please try again later",
			"code":  "forecast_unavailable",
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "Preparing the plan took too long, please try again")
	case err != nil:
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}

	stored, err := models.NewStoredTravelPlan(plan, user.ID)
	if err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	if err := db.Create(&stored).Error; err != nil {
		sentry.CaptureException(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save the plan")
	}
	fmt.Printf("[Suitcase: %v] Draft %s for %s, %v days\n", user.ID, plan.ID, stored.Location, len(plan.PackingSuggestions))
	return c.JSON(http.StatusCreated, models.TravelPlanOut{Status: stored.Status, DateRange: plan.DateRange(), Plan: plan})
}

func findPlan(db *gorm.DB, userID uint, planID string) (models.StoredTravelPlan, error) {
	var stored models.StoredTravelPlan
	err := db.Where("owner_id = ? AND plan_id = ?", userID, planID).Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return stored, echo.NewHTTPError(http.StatusNotFound, "Plan not found")
	}
	if err != nil {
		return stored, echo.ErrInternalServerError
	}
	return stored, nil
}

func planOut(stored models.StoredTravelPlan) (models.TravelPlanOut, error) {
	plan, err := stored.Plan()
	if err != nil {
		return models.TravelPlanOut{}, err
	}
	return models.TravelPlanOut{Status: stored.Status, DateRange: plan.DateRange(), Plan: plan}, nil
}

func (controller *SuitcaseController) Confirm(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	stored, err := findPlan(db, user.ID, c.Param("planId"))
	if err != nil {
		return err
	}
	if stored.Status != models.PlanConfirmed {
		if isFreePlan(user) {
			var confirmed int64
			if err := db.Model(&models.StoredTravelPlan{}).
				Where("owner_id = ? AND status = ?", user.ID, models.PlanConfirmed).
				Count(&confirmed).Error; err != nil {
				return echo.ErrInternalServerError
			}
			limit := services.GetEnvInt("FREE_TRIP_LIMIT", defaultFreeTripLimit)
			if confirmed >= int64(limit) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of %v trips, please subscribe", limit)})
			}
		}
		stored.Status = models.PlanConfirmed
		if err := db.Model(&stored).Update("status", stored.Status).Error; err != nil {
			return echo.ErrInternalServerError
		}
	}
	out, err := planOut(stored)
	if err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, out)
}

func (controller *SuitcaseController) Discard(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	stored, err := findPlan(db, user.ID, c.Param("planId"))
	if err != nil {
		return err
	}
	if err := db.Delete(&stored).Error; err != nil {
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": stored.PlanID})
}

func (controller *SuitcaseController) List(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	query := db.Where("owner_id = ?", user.ID)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	var records []models.StoredTravelPlan
	if err := query.Order("start_date, id").Find(&records).Error; err != nil {
		return echo.ErrInternalServerError
	}
	plans := make([]models.TravelPlanOut, 0, len(records))
	for _, stored := range records {
		out, err := planOut(stored)
		if err != nil {
			log.Printf("[Suitcase: %v] skipping unreadable plan %s: %v", user.ID, stored.PlanID, err)
			continue
		}
		plans = append(plans, out)
	}
	return c.JSON(http.StatusOK, plans)
}
