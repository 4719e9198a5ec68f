package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dressupapi/fashion"
	"dressupapi/models"
	"dressupapi/suitcase"
	"dressupapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	e     *echo.Echo
	aws   *test.AWSProviderMock
	cache *test.URLCacheMock
}

func newTestServer(db *gorm.DB, weather suitcase.WeatherService) testServer {
	if weather == nil {
		weather = test.WeatherMock{}
	}
	aws := &test.AWSProviderMock{}
	cache := &test.URLCacheMock{}
	e := SetupServer(db, test.GoogleServiceMock{}, aws, nil, nil, nil, cache, weather, nil)
	return testServer{e: e, aws: aws, cache: cache}
}

func (s testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s testServer) as(user *models.UserAccount, method string, target string, body interface{}) *httptest.ResponseRecorder {
	return s.do(test.NewJSONAuthRequest(method, target, UIntToStr(user.ID), body))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

// storeItem classifies a file name and saves it as an uploaded closet piece.
func storeItem(t *testing.T, db *gorm.DB, user *models.UserAccount, fileName string) models.Clothing {
	t.Helper()
	item := fashion.ClassifyLabel("closet/test/"+fileName, fileName)
	record := models.ClothingFromItem(item, user.ID, fileName)
	record.ImageStatus = "uploaded"
	require.NoError(t, db.Create(&record).Error)
	return record
}

// casualCloset is the smallest closet that yields exactly one casual look.
func casualCloset(t *testing.T, db *gorm.DB, user *models.UserAccount) (top, bottom, shoes models.Clothing) {
	return storeItem(t, db, user, "t-shirt basic.jpg"),
		storeItem(t, db, user, "jeans denim.jpg"),
		storeItem(t, db, user, "trampki.jpg")
}
