package models

// AppRecord is one app build submission, keyed by its Android package name.
type AppRecord struct {
	BaseModel

	PackageName  string   `json:"packageName" gorm:"uniqueIndex;not null;size:255"`
	AppName      string   `json:"appName" gorm:"size:255;index"`
	Website      string   `json:"website" gorm:"size:500"`
	ContactEmail string   `json:"contactEmail" gorm:"size:255;not null"`
	VersionName  string   `json:"versionName" gorm:"size:64"`
	VersionCode  int      `json:"versionCode"`
	Addons       []string `json:"addons" gorm:"serializer:json;type:text"`

	// Uploaded assets, paths relative to the upload root
	Icon   string `json:"icon" gorm:"size:500"`
	Splash string `json:"splash" gorm:"size:500"`

	// Build artifacts, BuildAAB stays empty until the app is paid for
	BuildFile string `json:"buildFile" gorm:"size:500"`
	BuildAAB  string `json:"buildAAB" gorm:"column:build_aab;size:500"`

	// Monetization
	AdmobAppID string `json:"admobAppId" gorm:"column:admob_app_id;size:255"`
	BannerAd   string `json:"bannerAd" gorm:"size:255"`
	RewardedAd string `json:"rewardedAd" gorm:"size:255"`

	Paid bool `json:"paid" gorm:"not null;default:false"`
}

// MergeFrom copies every non-empty descriptive field of in onto r. Payment
// state and the AAB path are never taken from in.
func (r *AppRecord) MergeFrom(in *AppRecord) {
	mergeString(&r.AppName, in.AppName)
	mergeString(&r.Website, in.Website)
	mergeString(&r.ContactEmail, in.ContactEmail)
	mergeString(&r.VersionName, in.VersionName)
	if in.VersionCode != 0 {
		r.VersionCode = in.VersionCode
	}
	if len(in.Addons) > 0 {
		r.Addons = append([]string(nil), in.Addons...)
	}
	mergeString(&r.Icon, in.Icon)
	mergeString(&r.Splash, in.Splash)
	mergeString(&r.BuildFile, in.BuildFile)
	mergeString(&r.AdmobAppID, in.AdmobAppID)
	mergeString(&r.BannerAd, in.BannerAd)
	mergeString(&r.RewardedAd, in.RewardedAd)
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
