package cli

import (
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
)

// ErrPickerCanceled is returned when the user dismisses the file dialog.
var ErrPickerCanceled = errors.New("file selection canceled")

// PickImageFile opens a native file dialog restricted to the supported image
// formats and returns the chosen path.
func PickImageFile() (string, error) {
	selected, err := zenity.SelectFile(
		zenity.Title("Choose a photo"),
		zenity.FileFilters{
			{Name: "Images", Patterns: []string{"*.jpg", "*.jpeg", "*.png", "*.gif", "*.webp"}, CaseFold: true},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrPickerCanceled
		}
		return "", fmt.Errorf("open file dialog: %w", err)
	}
	return selected, nil
}
