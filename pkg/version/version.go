package version

import (
	"encoding/json"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/sirupsen/logrus"
)

type Info struct {
	Version string    `json:"version"`
	Commit  string    `json:"commit"`
	Time    time.Time `json:"time"`
	Dirty   bool      `json:"dirty"`
}

func Get() Info {
	return Info{
		Version: versioninfo.Version,
		Commit:  versioninfo.Revision,
		Time:    versioninfo.LastCommit,
		Dirty:   versioninfo.DirtyBuild,
	}
}

// Version is Get as a json string.
var Version = func() string {
	b, err := json.Marshal(Get())
	if err != nil {
		logrus.Fatal(err)
	}
	return string(b)
}()

func Short() string {
	return versioninfo.Short()
}
