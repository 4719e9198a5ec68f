package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".heic", ".heif", ".webp"}

var imageMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heic": "image/heic",
	".heif": "image/heif",
	".webp": "image/webp",
}

func IsAllowedImage(fileName string) bool {
	return slices.Contains(allowedImageExtensions, strings.ToLower(filepath.Ext(fileName)))
}

// ImageMimeType guesses the mime type from the extension, empty when unknown.
func ImageMimeType(fileName string) string {
	return imageMimeTypes[strings.ToLower(filepath.Ext(fileName))]
}

// ClosetObjectKey keeps the original file name as the last path segment so
// the classifier still sees it.
func ClosetObjectKey(userID uint, fileName string) string {
	return fmt.Sprintf("closet/%v/%s/%s", userID, uuid.NewString()[:8], safeFileName(fileName))
}

func SelfieObjectKey(userID uint, fileName string) string {
	return fmt.Sprintf("selfies/%v/%s", userID, safeFileName(fileName))
}

func safeFileName(fileName string) string {
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" {
		return "photo"
	}
	return name
}

func StrPointer(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

func GetEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func DecodeBase64EnvPrivateKey(envKey string) (string, error) {
	base64Key := os.Getenv(envKey)
	if base64Key == "" {
		return "", fmt.Errorf("%s environment variable is not set", envKey)
	}

	decodedBytes, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 private key: %v", err)
	}
	return string(decodedBytes), nil
}
