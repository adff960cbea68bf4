package utils

import (
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
)

// ErrAborted is returned when the user cancels a prompt
var ErrAborted = errors.New("aborted")

// SelectVersion asks the user to pick one of versions. The first version is preselected
func SelectVersion(label string, versions []string) (string, error) {
	pretty := make([]string, len(versions))
	for i, v := range versions {
		pretty[i] = PrettyVersion(v)
	}
	prompt := &promptui.Select{
		Label: label,
		Items: pretty,
		Size:  12,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt || err == promptui.ErrEOF {
			return "", ErrAborted
		}
		return "", err
	}
	return versions[idx], nil
}
