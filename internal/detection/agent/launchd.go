package agent

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// systemLaunchdDirs are the system-level launchd configuration locations
var systemLaunchdDirs = []string{
	"/Library/LaunchAgents",
	"/Library/LaunchDaemons",
	"/System/Library/LaunchAgents",
	"/System/Library/LaunchDaemons",
}

const userHomesDir = "/Users"

// LaunchdConfigDirs returns the launchd configuration locations on this
// system: the fixed system directories plus each user's LaunchAgents
// directory that actually exists.
func LaunchdConfigDirs(fsys afero.Fs) []string {
	dirs := make([]string, 0, len(systemLaunchdDirs))
	dirs = append(dirs, systemLaunchdDirs...)

	homes, err := afero.ReadDir(fsys, userHomesDir)
	if err != nil {
		return dirs
	}
	for _, home := range homes {
		if !home.IsDir() {
			continue
		}
		candidate := filepath.Join(userHomesDir, home.Name(), "Library/LaunchAgents")
		if ok, _ := afero.DirExists(fsys, candidate); ok {
			dirs = append(dirs, candidate)
		}
	}
	return dirs
}

// LaunchdConfigs filters paths down to those living in a launchd
// configuration location, i.e. matches that are active jobs rather than
// payload files. Used to call out jobs that will keep respawning until the
// machine reboots or the job is unloaded.
func LaunchdConfigs(fsys afero.Fs, paths []string) []string {
	dirs := LaunchdConfigDirs(fsys)

	var configs []string
	for _, p := range paths {
		for _, dir := range dirs {
			if strings.HasPrefix(p, dir+string(filepath.Separator)) {
				configs = append(configs, p)
				break
			}
		}
	}
	return configs
}
