package dbhelper

import (
	"dressupapi/models"
	"log"

	"gorm.io/gorm"
)

func SetupCleaner(db *gorm.DB) func() {

	return func() {

		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CalendarEntry{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StoredLook{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StoredTravelPlan{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StoredProfile{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Clothing{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserPushToken{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserAccount{})

	}
}

func Migrate(db *gorm.DB, model interface{}) {
	err := db.AutoMigrate(model)
	if err != nil {
		log.Printf("Error while migrating %T", model)
		log.Fatal(err)
	}
}
