package instances

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Scaffold creates the directories the game expects
func (i *Instance) Scaffold() error {
	for _, dir := range []string{i.GameDir(), i.ModsDir(), i.AssetsDir(), i.LibrariesDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return merrors.IO(dir, err)
		}
	}
	return nil
}

// Save writes instance.json
func (i *Instance) Save() error {
	if err := os.MkdirAll(i.Dir, 0755); err != nil {
		return merrors.IO(i.Dir, err)
	}
	raw, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding instance")
	}
	if err := os.WriteFile(i.ConfigPath(), raw, 0644); err != nil {
		return merrors.IO(i.ConfigPath(), err)
	}
	return nil
}

// Load reads the instance in dir
func Load(dir, globalDir string) (*Instance, error) {
	path := filepath.Join(dir, ConfigFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoInstance
		}
		return nil, merrors.IO(path, err)
	}

	instance := &Instance{}
	if err := json.Unmarshal(raw, instance); err != nil {
		return nil, merrors.Parse(ConfigFile, err)
	}
	instance.Dir = dir
	instance.GlobalDir = globalDir
	return instance, nil
}

// Open loads the instance called name from the global instances directory
func Open(name, globalDir string) (*Instance, error) {
	return Load(filepath.Join(InstancesDir(globalDir), name), globalDir)
}

// List returns all instances sorted by name. Directories without a readable
// instance.json are skipped
func List(globalDir string) ([]*Instance, error) {
	root := InstancesDir(globalDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, merrors.IO(root, err)
	}

	var list []*Instance
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		instance, err := Load(filepath.Join(root, entry.Name()), globalDir)
		if err != nil {
			continue
		}
		list = append(list, instance)
	}
	slices.SortFunc(list, func(a, b *Instance) int { return strings.Compare(a.Name, b.Name) })
	return list, nil
}
