package controllers

import (
	"net/http"

	"dressupapi/fashion"
	"dressupapi/models"

	"github.com/labstack/echo/v4"
)

type ShopController struct {
}

func (controller *ShopController) ShopRoutes(g *echo.Group) {
	g.POST("/review", controller.Review)
}

// Review classifies the photographed store pieces by file name and weighs
// them against the closet.
func (controller *ShopController) Review(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var req models.ShoppingReviewIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	candidates := make([]fashion.ClassifiedItem, 0, len(req.FileNames))
	for _, fileName := range req.FileNames {
		candidates = append(candidates, fashion.ClassifyLabel(fileName, fileName))
	}
	closet, err := closetItems(db, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch closet")
	}
	review := fashion.EvaluatePurchase(candidates, closet, fashion.ShoppingScope(req.Scope))
	if review == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Nothing to review")
	}
	return c.JSON(http.StatusOK, review)
}
