package controllers

import (
	"fmt"
	"log"
	"net/http"

	"dressupapi/fashion"
	"dressupapi/models"
	"dressupapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileController struct {
	AWSService services.AWSServiceProvider
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.POST("/selfie", controller.UploadSelfie)
	g.GET("", controller.Get)
	g.DELETE("", controller.Delete)
}

func profileOut(profile *fashion.PersonalStyleProfile) models.ColorProfileOut {
	out := models.ColorProfileOut{Profile: profile, Keywords: []string{}}
	if profile != nil {
		out.Keywords = profile.KeywordSummary()
	}
	return out
}

// UploadSelfie analyzes the selfie reference and stores the resulting color
// profile. The photo itself goes to storage through the returned link.
func (controller *ProfileController) UploadSelfie(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var req models.SelfieIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !services.IsAllowedImage(req.FileName) {
		return echo.NewHTTPError(http.StatusBadRequest, "Only jpg, png, heic and webp photos are supported")
	}

	bucket := services.GetEnv("R2_BUCKET_NAME", "")
	objectKey := services.SelfieObjectKey(user.ID, req.FileName)
	uploadUrl, err := controller.AWSService.PresignLink(c.Request().Context(), bucket, objectKey)
	if err != nil {
		log.Printf("[Profile: %v] Unable to presign %s: %s", user.ID, objectKey, err)
		sentry.CaptureException(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error while preparing the selfie upload")
	}

	profile := fashion.AnalyzeSelfie(objectKey)
	stored := models.StoredProfileFrom(profile, user.ID)
	previousKey := user.SelfieKey
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"selfie_ref", "palette_name", "palette_description", "palette_colors",
				"palette_suggestions", "eye_color", "hair_tone", "skin_tone", "face_shape", "updated_at",
			}),
		}).Create(&stored).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.UserAccount{}).Where("id = ?", user.ID).Update("selfie_key", objectKey).Error
	})
	if err != nil {
		sentry.CaptureException(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save your color profile")
	}
	if previousKey != nil && *previousKey != objectKey {
		if err := controller.AWSService.DeleteObject(c.Request().Context(), bucket, *previousKey); err != nil {
			sentry.CaptureException(err)
		}
	}

	fmt.Printf("[Profile: %v] Palette %s\n", user.ID, profile.Palette.Name)
	out := profileOut(&profile)
	out.UploadUrl = uploadUrl
	return c.JSON(http.StatusOK, out)
}

func (controller *ProfileController) Get(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileOut(loadProfile(db, user.ID)))
}

func (controller *ProfileController) Delete(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", user.ID).Delete(&models.StoredProfile{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.UserAccount{}).Where("id = ?", user.ID).Update("selfie_key", nil).Error
	})
	if err != nil {
		return echo.ErrInternalServerError
	}
	if user.SelfieKey != nil {
		if err := controller.AWSService.DeleteObject(c.Request().Context(), services.GetEnv("R2_BUCKET_NAME", ""), *user.SelfieKey); err != nil {
			sentry.CaptureException(err)
		}
	}
	return c.JSON(http.StatusOK, profileOut(nil))
}
