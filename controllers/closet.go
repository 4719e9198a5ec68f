package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"dressupapi/fashion"
	"dressupapi/models"
	"dressupapi/services"
	"dressupapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	defaultFreeClosetLimit = 30
	reclassifyQueue        = "generate"
	// finished reclassify tasks stay visible to status polling for this long
	reclassifyRetention = time.Hour
)

type StyleOut struct {
	Style       fashion.Style `json:"style"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
}

type ClosetController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
}

func (controller *ClosetController) ClosetRoutes(g *echo.Group) {
	g.POST("/items", controller.AddItem)
	g.GET("/items", controller.ListItems)
	g.PUT("/items/:itemId/source", controller.ReplaceSource)
	g.PUT("/items/:itemId/uploaded", controller.MarkUploaded)
	g.DELETE("/items/:itemId", controller.DeleteItem)
	g.GET("/styles", controller.Styles)
	g.POST("/reclassify", controller.Reclassify)
	g.GET("/reclassify/:taskId", controller.ReclassifyStatus)
}

func loadCloset(db *gorm.DB, userID uint) ([]models.Clothing, error) {
	var records []models.Clothing
	err := db.Where("owner_id = ?", userID).Order("id").Find(&records).Error
	return records, err
}

func sourceTaken(db *gorm.DB, userID uint, sourceRef string) (bool, error) {
	var count int64
	err := db.Model(&models.Clothing{}).Where("owner_id = ? AND source_ref = ?", userID, sourceRef).Count(&count).Error
	return count > 0, err
}

// prepareSource picks the stored source of a new piece. Without an explicit
// reference the photo goes to storage and an upload link is returned.
func (controller *ClosetController) prepareSource(ctx context.Context, userID uint, req models.ClosetItemIn) (string, string, error) {
	if req.SourceRef != nil && strings.TrimSpace(*req.SourceRef) != "" {
		return strings.TrimSpace(*req.SourceRef), "", nil
	}
	if !services.IsAllowedImage(req.FileName) {
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "Only jpg, png, heic and webp photos are supported")
	}
	objectKey := services.ClosetObjectKey(userID, req.FileName)
	uploadUrl, err := controller.AWSService.PresignLink(ctx, services.GetEnv("R2_BUCKET_NAME", ""), objectKey)
	if err != nil {
		log.Printf("[Closet: %v] Unable to presign %s: %s", userID, objectKey, err)
		sentry.CaptureException(err)
		return "", "", echo.NewHTTPError(http.StatusInternalServerError, "Error while preparing the photo upload")
	}
	return objectKey, uploadUrl, nil
}

func mimeTypeOf(req models.ClosetItemIn) string {
	if req.MimeType != nil && *req.MimeType != "" {
		return *req.MimeType
	}
	return services.ImageMimeType(req.FileName)
}

func (controller *ClosetController) AddItem(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var req models.ClosetItemIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if isFreePlan(user) {
		var total int64
		if err := db.Model(&models.Clothing{}).Where("owner_id = ?", user.ID).Count(&total).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get closet data")
		}
		limit := services.GetEnvInt("FREE_CLOSET_LIMIT", defaultFreeClosetLimit)
		if total >= int64(limit) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of %v pieces, please subscribe", limit)})
		}
	}

	sourceRef, uploadUrl, err := controller.prepareSource(c.Request().Context(), user.ID, req)
	if err != nil {
		return err
	}
	taken, err := sourceTaken(db, user.ID, sourceRef)
	if err != nil {
		return echo.ErrInternalServerError
	}
	if taken {
		return c.JSON(http.StatusConflict, map[string]string{"error": models.ErrDuplicateSource.Error()})
	}

	mimeType := mimeTypeOf(req)
	fileName := func(string) (string, error) { return req.FileName, nil }
	item := fashion.Classify(sourceRef, fashion.ChainResolvers(fileName, fashion.LastPathSegment, fashion.MimeTypeFallback(mimeType)))
	record := models.ClothingFromItem(item, user.ID, req.FileName)
	record.MimeType = services.StrPointer(mimeType)
	if uploadUrl == "" {
		record.ImageStatus = "external"
	}
	if err := db.Create(&record).Error; err != nil {
		sentry.CaptureException(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save the piece, please try again")
	}
	fmt.Printf("[Closet: %v] Added %s as %s\n", user.ID, item.ID, item.Category)
	return c.JSON(http.StatusCreated, models.ClosetItemUploadOut{Item: record.ToItem(), UploadUrl: uploadUrl})
}

// readURL resolves the photo link of a piece. Stored photos go through the
// link cache with a direct presign as the fallback.
func (controller *ClosetController) readURL(ctx context.Context, record models.Clothing) string {
	if record.ImageStatus == "external" {
		return record.SourceRef
	}
	if record.ImageStatus != "uploaded" {
		return ""
	}
	url, err := controller.URLCache.GetReadURL(ctx, record.SourceRef)
	if err == nil {
		return url
	}
	log.Printf("[Closet] Cache failed for key '%s': %v, presigning directly", record.SourceRef, err)
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("failure_type", "cache_system")
		scope.SetExtra("objectKey", record.SourceRef)
		sentry.CaptureException(err)
	})
	fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, services.GetEnv("R2_BUCKET_NAME", ""), record.SourceRef)
	if fallbackErr != nil {
		sentry.CaptureException(fallbackErr)
		return ""
	}
	return fallbackUrl
}

func (controller *ClosetController) itemsWithURLs(ctx context.Context, records []models.Clothing) []models.ClosetItemOut {
	out := make([]models.ClosetItemOut, len(records))
	var wg sync.WaitGroup
	for i, record := range records {
		wg.Add(1)
		go func(index int, record models.Clothing) {
			defer wg.Done()
			out[index] = models.ClosetItemOut{ClassifiedItem: record.ToItem(), ImageUrl: controller.readURL(ctx, record)}
		}(i, record)
	}
	wg.Wait()
	return out
}

func (controller *ClosetController) ListItems(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	query := db.Where("owner_id = ?", user.ID)
	if raw := c.QueryParam("category"); raw != "" {
		category := fashion.ParseCategory(raw)
		if category == fashion.Unknown && raw != string(fashion.Unknown) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown category")
		}
		query = query.Where("category = ?", category)
	}
	var records []models.Clothing
	if err := query.Order("id").Find(&records).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch closet")
	}

	items := controller.itemsWithURLs(c.Request().Context(), records)
	sections := []models.ClosetSectionOut{}
	for _, category := range fashion.AllCategories() {
		section := models.ClosetSectionOut{Category: category, Label: category.Label(), Items: []models.ClosetItemOut{}}
		for _, item := range items {
			if item.Category == category {
				section.Items = append(section.Items, item)
			}
		}
		if len(section.Items) > 0 {
			sections = append(sections, section)
		}
	}
	return c.JSON(http.StatusOK, sections)
}

func findClothing(db *gorm.DB, userID uint, itemID string) (models.Clothing, error) {
	var record models.Clothing
	err := db.Where("owner_id = ? AND item_id = ?", userID, itemID).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record, echo.NewHTTPError(http.StatusNotFound, "Piece not found")
	}
	if err != nil {
		return record, echo.ErrInternalServerError
	}
	return record, nil
}

func (controller *ClosetController) forgetPhoto(ctx context.Context, record models.Clothing) {
	if record.ImageStatus == "external" {
		return
	}
	if err := controller.URLCache.Invalidate(ctx, record.SourceRef); err != nil {
		log.Printf("[Closet] could not invalidate %s: %v", record.SourceRef, err)
	}
	if err := controller.AWSService.DeleteObject(ctx, services.GetEnv("R2_BUCKET_NAME", ""), record.SourceRef); err != nil {
		sentry.CaptureException(err)
	}
}

// ReplaceSource swaps the photo behind a piece and keeps its id and
// classification, so saved looks still point at it.
func (controller *ClosetController) ReplaceSource(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	var req models.ClosetItemIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	record, err := findClothing(db, user.ID, c.Param("itemId"))
	if err != nil {
		return err
	}
	sourceRef, uploadUrl, err := controller.prepareSource(c.Request().Context(), user.ID, req)
	if err != nil {
		return err
	}
	if sourceRef != record.SourceRef {
		taken, err := sourceTaken(db, user.ID, sourceRef)
		if err != nil {
			return echo.ErrInternalServerError
		}
		if taken {
			return c.JSON(http.StatusConflict, map[string]string{"error": models.ErrDuplicateSource.Error()})
		}
	}

	previous := record
	item := record.ToItem().WithSource(sourceRef)
	record.SourceRef = item.SourceRef
	record.MimeType = services.StrPointer(mimeTypeOf(req))
	record.ImageStatus = "draft"
	if uploadUrl == "" {
		record.ImageStatus = "external"
	}
	if err := db.Save(&record).Error; err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	if previous.SourceRef != record.SourceRef {
		controller.forgetPhoto(c.Request().Context(), previous)
	}
	return c.JSON(http.StatusOK, models.ClosetItemUploadOut{Item: item, UploadUrl: uploadUrl})
}

func (controller *ClosetController) MarkUploaded(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	record, err := findClothing(db, user.ID, c.Param("itemId"))
	if err != nil {
		return err
	}
	if record.ImageStatus == "draft" {
		record.ImageStatus = "uploaded"
		if err := db.Model(&record).Update("image_status", record.ImageStatus).Error; err != nil {
			return echo.ErrInternalServerError
		}
	}
	return c.JSON(http.StatusOK, models.ClosetItemOut{
		ClassifiedItem: record.ToItem(),
		ImageUrl:       controller.readURL(c.Request().Context(), record),
	})
}

// DeleteItem removes a piece along with the saved looks and calendar days
// that used it.
func (controller *ClosetController) DeleteItem(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	record, err := findClothing(db, user.ID, c.Param("itemId"))
	if err != nil {
		return err
	}

	var removedLooks []string
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.StoredLook{}).
			Where("owner_id = ? AND ? = ANY(piece_ids)", user.ID, record.ItemID).
			Pluck("look_id", &removedLooks).Error; err != nil {
			return err
		}
		if len(removedLooks) > 0 {
			if err := tx.Where("owner_id = ? AND look_id IN ?", user.ID, removedLooks).Delete(&models.StoredLook{}).Error; err != nil {
				return err
			}
			if err := tx.Where("owner_id = ? AND look_id IN ?", user.ID, removedLooks).Delete(&models.CalendarEntry{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&record).Error
	})
	if err != nil {
		sentry.CaptureException(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remove the piece")
	}
	controller.forgetPhoto(c.Request().Context(), record)
	return c.JSON(http.StatusOK, echo.Map{
		"deleted":       record.ItemID,
		"removed_looks": len(removedLooks),
	})
}

func (controller *ClosetController) Styles(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	records, err := loadCloset(db, user.ID)
	if err != nil {
		return echo.ErrInternalServerError
	}
	styles := []StyleOut{}
	for _, style := range fashion.AvailableStyles(models.ClosetItems(records)) {
		styles = append(styles, StyleOut{Style: style, Title: style.Title(), Description: style.Description()})
	}
	return c.JSON(http.StatusOK, styles)
}

// Reclassify queues a fresh classification of the whole closet. Without a
// queue it runs in the request.
func (controller *ClosetController) Reclassify(c echo.Context) error {
	user, db, err := requestDeps(c)
	if err != nil {
		return err
	}
	asynqClient, ok := queueClient(c)
	if !ok {
		count, err := tasks.ReclassifyCloset(db, user.ID)
		if err != nil {
			sentry.CaptureException(err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Sorry, could not refresh your closet, please try again")
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "done", "updated": count})
	}

	task, err := tasks.NewReclassifyClosetTask(user.ID)
	if err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue(reclassifyQueue), asynq.Retention(reclassifyRetention))
	if err != nil {
		sentry.CaptureException(err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Sorry, could not refresh your closet, please try again")
	}
	fmt.Println("[Queue] Reclassify closet task submitted, User ID: ", user.ID, " Task ID: ", info.ID)
	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued", "task_id": info.ID})
}

// reclassifyStatusOut reports a reclassify task. Tasks of other users are
// reported as missing.
func reclassifyStatusOut(info *asynq.TaskInfo, userID uint) (echo.Map, bool) {
	if info == nil || info.Type != tasks.TypeReclassifyCloset {
		return nil, false
	}
	var payload tasks.ReclassifyClosetPayload
	if err := json.Unmarshal(info.Payload, &payload); err != nil || payload.UserID != userID {
		return nil, false
	}
	out := echo.Map{"task_id": info.ID, "status": info.State.String()}
	if info.LastErr != "" {
		out["error"] = info.LastErr
	}
	return out, true
}

func (controller *ClosetController) ReclassifyStatus(c echo.Context) error {
	user, _, err := requestDeps(c)
	if err != nil {
		return err
	}
	inspector, ok := queueInspector(c)
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Task status is unavailable")
	}
	info, err := inspector.GetTaskInfo(reclassifyQueue, c.Param("taskId"))
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	if err != nil {
		sentry.CaptureException(err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Task status is unavailable")
	}
	out, ok := reclassifyStatusOut(info, user.ID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, out)
}
