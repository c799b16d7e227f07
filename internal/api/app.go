package api

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"app-builder-api/internal/apperrors"
	"app-builder-api/internal/models"
	"app-builder-api/internal/response"
	"app-builder-api/internal/services"

	"github.com/gin-gonic/gin"
)

// SubmitForm is the multipart form of POST /api/submit
type SubmitForm struct {
	PackageName  string                `form:"packageName"`
	AppName      string                `form:"appName"`
	Website      string                `form:"website"`
	ContactEmail string                `form:"contactEmail"`
	VersionName  string                `form:"versionName"`
	VersionCode  string                `form:"versionCode"`
	Addons       []string              `form:"addons"`
	AdmobAppID   string                `form:"admobAppId"`
	BannerAd     string                `form:"bannerAd"`
	RewardedAd   string                `form:"rewardedAd"`
	Icon         *multipart.FileHeader `form:"icon"`
	Splash       *multipart.FileHeader `form:"splash"`
}

// CheckApp reports whether a package was submitted before
// GET /api/checkApp?packageName=
func (h *handler) CheckApp(c *gin.Context) {
	record, err := h.submissions.CheckApp(c.Request.Context(), c.Query("packageName"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	if record == nil {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exists":      true,
		"versionName": record.VersionName,
		"versionCode": record.VersionCode,
	})
}

// Submit creates or updates an app and returns the test APK link
// POST /api/submit
func (h *handler) Submit(c *gin.Context) {
	var form SubmitForm
	if err := c.ShouldBind(&form); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	meta, err := form.toRecord()
	if err != nil {
		response.FromError(c, err)
		return
	}

	input := services.SubmitInput{Metadata: *meta}

	icon, closeIcon, err := openUpload(form.Icon)
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer closeIcon()
	input.Icon = icon

	splash, closeSplash, err := openUpload(form.Splash)
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer closeSplash()
	input.Splash = splash

	result, err := h.submissions.Submit(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "App submitted successfully",
		"downloadUrl": result.DownloadURL,
	})
}

// Search finds an app by name or package
// GET /api/search?q=
func (h *handler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "Search query is required")
		return
	}

	lookup, err := h.submissions.Search(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if lookup == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "No app found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    lookup.Record,
		"apkLink": lookup.APKLink,
		"aabLink": lookup.AABLink,
	})
}

func (f *SubmitForm) toRecord() (*models.AppRecord, error) {
	record := &models.AppRecord{
		PackageName:  strings.TrimSpace(f.PackageName),
		AppName:      strings.TrimSpace(f.AppName),
		Website:      strings.TrimSpace(f.Website),
		ContactEmail: strings.TrimSpace(f.ContactEmail),
		VersionName:  strings.TrimSpace(f.VersionName),
		AdmobAppID:   strings.TrimSpace(f.AdmobAppID),
		BannerAd:     strings.TrimSpace(f.BannerAd),
		RewardedAd:   strings.TrimSpace(f.RewardedAd),
	}

	if v := strings.TrimSpace(f.VersionCode); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: versionCode must be an integer", apperrors.ErrValidation)
		}
		record.VersionCode = code
	}

	addons, err := parseAddons(f.Addons)
	if err != nil {
		return nil, err
	}
	record.Addons = addons

	return record, nil
}

// parseAddons accepts repeated form values, a single JSON array or a single
// comma separated list
func parseAddons(values []string) ([]string, error) {
	if len(values) == 1 {
		v := strings.TrimSpace(values[0])
		switch {
		case strings.HasPrefix(v, "["):
			var parsed []string
			if err := json.Unmarshal([]byte(v), &parsed); err != nil {
				return nil, fmt.Errorf("%w: addons must be a JSON array of strings", apperrors.ErrValidation)
			}
			values = parsed
		default:
			values = strings.Split(v, ",")
		}
	}

	var addons []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			addons = append(addons, v)
		}
	}
	return addons, nil
}

func openUpload(fh *multipart.FileHeader) (*services.Upload, func(), error) {
	if fh == nil {
		return nil, func() {}, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open upload %s: %v", apperrors.ErrStorage, fh.Filename, err)
	}
	return &services.Upload{Filename: fh.Filename, Content: f}, func() { f.Close() }, nil
}
