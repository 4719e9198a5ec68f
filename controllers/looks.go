package controllers

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"

	"dressupapi/fashion"
	"dressupapi/models"
	"dressupapi/suitcase"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	minLookPieces = 2
	maxLookPieces = 5
)

type LooksController struct {
}

func (controller *LooksController) LooksRoutes(g *echo.Group) {
	g.POST("/generate", controller.Generate)
	g.GET("", controller.List)
	g.POST("", controller.Save)
	g.PUT("/:lookId", controller.Update)
	g.DELETE("", controller.DeleteAll)
	g.DELETE("/:lookId", controller.Delete)
	g.POST("/calendar", controller.Assign)
	g.DELETE("/calendar/:date", controller.Unassign)
	g.GET("/calendar", controller.Calendar)
}

// loadProfile returns nil when the user has no usable color profile.
func loadProfile(db *gorm.DB, userID uint) *fashion.PersonalStyleProfile {
	var stored models.StoredProfile
	r := db.Limit(1).Find(&stored, "owner_id = ?", userID)
	if r.Error != nil || r.RowsAffected == 0 {
		return nil
	}
	return stored.Decode()
}

func loadSavedLooks(db *gorm.DB, userID uint, closet []fashion.ClassifiedItem) ([]fashion.StyledLook, error) {
	var records []models.StoredLook
	if err := db.Where("owner_id = ?", userID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return models.DecodeLooks(records, closet), nil
}

func closetItems(db *gorm.DB, userID uint) ([]fashion.ClassifiedItem, error) {
	records, err := loadCloset(db, userID)
	if err != nil {
		return nil, err
	}
	return models.ClosetItems(records), nil
}

// resolvePieces looks up every id in the closet, keeping the requested order.
// A look is made of minLookPieces to maxLookPieces distinct pieces.
func resolvePieces(closet []fashion.ClassifiedItem, ids []string) ([]fashion.ClassifiedItem, error) {
	byID := make(map[string]fashion.ClassifiedItem, len(closet))
	for _, item := range closet {
		byID[item.ID] = item
	}
	pieces := make([]fashion.ClassifiedItem, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Piece %s is not in your closet", id))
		}
		if seen[id] {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Piece %s is listed twice", id))
		}
		seen[id] = true
		pieces = append(pieces, item)
	}
	if len(pieces) < minLookPieces || len(pieces) > maxLookPieces {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("A look needs %d to %d pieces", minLookPieces, maxLookPieces))
	}
	return pieces, nil
}

func (controller *LooksController) Generate(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var req models.GenerateLooksIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	style, _ := fashion.ParseStyle(req.Style)
	closet, err := closetItems(db, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch closet")
	}

	rng := fashion.NewRand()
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed))
	}
	looks := fashion.GenerateLooks(rng, closet, style, loadProfile(db, user.ID), req.Limit)
	fmt.Printf("[Looks: %v] Generated %v %s looks from %v pieces\n", user.ID, len(looks), style, len(closet))
	return c.JSON(http.StatusOK, looks)
}

func (controller *LooksController) List(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	closet, err := closetItems(db, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch closet")
	}
	looks, err := loadSavedLooks(db, user.ID, closet)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch looks")
	}
	return c.JSON(http.StatusOK, looks)
}

// Save stores the posted looks. Saving a look id again overwrites it.
func (controller *LooksController) Save(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var req models.SaveLooksIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	closet, err := closetItems(db, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch closet")
	}
	profile := loadProfile(db, user.ID)

	saved := make([]fashion.StyledLook, 0, len(req.Looks))
	records := make([]models.StoredLook, 0, len(req.Looks))
	for _, in := range req.Looks {
		pieces, err := resolvePieces(closet, in.PieceIDs)
		if err != nil {
			return err
		}
		style, _ := fashion.ParseStyle(in.Style)
		look := fashion.RebuildLook(in.ID, pieces, style, profile)
		saved = append(saved, look)
		records = append(records, models.StoredLookFrom(look, user.ID))
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "look_id"}, {Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"style", "piece_ids", "narrative", "highlights", "advantages", "updated_at"}),
	}).Create(&records).Error
	if err != nil {
		sentry.CaptureException(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save looks")
	}
	return c.JSON(http.StatusCreated, saved)
}

func findLook(db *gorm.DB, userID uint, lookID string) (models.StoredLook, error) {
	var record models.StoredLook
	err := db.Where("owner_id = ? AND look_id = ?", userID, lookID).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record, echo.NewHTTPError(http.StatusNotFound, "Look not found")
	}
	if err != nil {
		return record, echo.ErrInternalServerError
	}
	return record, nil
}

// Update swaps the pieces of a saved look and keeps its id, so calendar days
// stay assigned.
func (controller *LooksController) Update(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var req models.UpdateLookIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	record, err := findLook(db, user.ID, c.Param("lookId"))
	if err != nil {
		return err
	}
	style, ok := fashion.ParseStyle(record.Style)
	if !ok {
		return echo.NewHTTPError(http.StatusConflict, "Look style is no longer supported")
	}
	closet, err := closetItems(db, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch closet")
	}
	pieces, err := resolvePieces(closet, req.PieceIDs)
	if err != nil {
		return err
	}

	look := fashion.RebuildLook(record.LookID, pieces, style, loadProfile(db, user.ID))
	updated := models.StoredLookFrom(look, user.ID)
	updated.ID = record.ID
	updated.CreatedAt = record.CreatedAt
	if err := db.Save(&updated).Error; err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, look)
}

func (controller *LooksController) Delete(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	record, err := findLook(db, user.ID, c.Param("lookId"))
	if err != nil {
		return err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND look_id = ?", user.ID, record.LookID).Delete(&models.CalendarEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
	if err != nil {
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": record.LookID})
}

func (controller *LooksController) DeleteAll(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var removed int64
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", user.ID).Delete(&models.CalendarEntry{}).Error; err != nil {
			return err
		}
		r := tx.Where("owner_id = ?", user.ID).Delete(&models.StoredLook{})
		removed = r.RowsAffected
		return r.Error
	})
	if err != nil {
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": removed})
}

func (controller *LooksController) Assign(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var req models.CalendarIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	date, err := suitcase.ParseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Date must look like 2006-01-02")
	}
	if _, err := findLook(db, user.ID, req.LookID); err != nil {
		return err
	}

	entry := models.CalendarEntry{OwnerID: user.ID, Date: date.Format(suitcase.DateLayout), LookID: req.LookID}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"look_id", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, echo.Map{"date": entry.Date, "look_id": entry.LookID})
}

func (controller *LooksController) Unassign(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	date, err := suitcase.ParseDate(c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Date must look like 2006-01-02")
	}
	r := db.Where("owner_id = ? AND date = ?", user.ID, date.Format(suitcase.DateLayout)).Delete(&models.CalendarEntry{})
	if r.Error != nil {
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": r.RowsAffected})
}

// Calendar returns the date to look id map. Days pointing at a look that
// can no longer be built are removed on the way.
func (controller *LooksController) Calendar(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	closet, err := closetItems(db, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch closet")
	}
	looks, err := loadSavedLooks(db, user.ID, closet)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch looks")
	}
	var entries []models.CalendarEntry
	if err := db.Where("owner_id = ?", user.ID).Order("date").Find(&entries).Error; err != nil {
		return echo.ErrInternalServerError
	}

	kept, stale := models.PruneCalendar(entries, looks)
	if len(stale) > 0 {
		if err := db.Delete(&stale).Error; err != nil {
			sentry.CaptureException(err)
		} else {
			fmt.Printf("[Looks: %v] Dropped %v calendar days without a look\n", user.ID, len(stale))
		}
	}
	return c.JSON(http.StatusOK, models.CalendarMap(kept))
}
