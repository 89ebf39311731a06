// Package disks holds predefined disk image size profiles, parsed from an
// embedded CSV the way the teacher's disks package parses floppy disk
// geometries from disk-geometries.csv. These are a convenience for callers
// creating new images; they have no bearing on the on-disk format itself.
package disks

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
)

// Profile names a predefined disk image size.
type Profile struct {
	Name   string `csv:"name"`
	Slug   string `csv:"slug"`
	Blocks uint32 `csv:"blocks"`
	Notes  string `csv:"notes"`
}

//go:embed profiles.csv
var profilesRawCSV string

var profiles map[string]Profile

// GetProfile looks up a predefined disk image size profile by its slug
// (e.g. "tiny", "small", "medium", "large").
func GetProfile(slug string) (Profile, error) {
	profile, ok := profiles[slug]
	if ok {
		return profile, nil
	}
	return Profile{}, fmt.Errorf("no predefined disk profile exists with slug %q", slug)
}

// Slugs returns every known profile slug, for building help text.
func Slugs() []string {
	slugs := make([]string, 0, len(profiles))
	for slug := range profiles {
		slugs = append(slugs, slug)
	}
	return slugs
}

func init() {
	profiles = make(map[string]Profile)
	reader := strings.NewReader(profilesRawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Profile) error {
		if _, exists := profiles[row.Slug]; exists {
			return fmt.Errorf("duplicate definition for disk profile %q", row.Slug)
		}
		profiles[row.Slug] = row
		return nil
	})
	if err != nil {
		panic(err)
	}
}
