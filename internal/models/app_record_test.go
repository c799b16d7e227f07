package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppRecord_MergeFrom(t *testing.T) {
	existing := &AppRecord{
		PackageName:  "com.acme.app",
		AppName:      "Acme",
		ContactEmail: "a@x.com",
		VersionName:  "1.0",
		VersionCode:  1,
		Addons:       []string{"ads"},
		Icon:         "icons/old.png",
		BuildFile:    "builds/com.acme.app.apk",
		BuildAAB:     "builds/com.acme.app.aab",
		Paid:         true,
	}

	existing.MergeFrom(&AppRecord{
		PackageName: "com.acme.app",
		VersionName: "1.1",
		VersionCode: 2,
		BuildFile:   "builds/com.acme.app.apk",
		BuildAAB:    "",
		Paid:        false,
	})

	assert.Equal(t, "Acme", existing.AppName)
	assert.Equal(t, "a@x.com", existing.ContactEmail)
	assert.Equal(t, "1.1", existing.VersionName)
	assert.Equal(t, 2, existing.VersionCode)
	assert.Equal(t, []string{"ads"}, existing.Addons)
	assert.Equal(t, "icons/old.png", existing.Icon)
	assert.Equal(t, "builds/com.acme.app.aab", existing.BuildAAB)
	assert.True(t, existing.Paid)
}

func TestAppRecord_MergeFromReplacesAddons(t *testing.T) {
	existing := &AppRecord{Addons: []string{"ads"}}
	in := &AppRecord{Addons: []string{"push", "iap"}}

	existing.MergeFrom(in)
	in.Addons[0] = "mutated"

	assert.Equal(t, []string{"push", "iap"}, existing.Addons)
}
