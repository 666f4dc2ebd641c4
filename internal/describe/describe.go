// Package describe suggests a short description for a collection from the
// titles and tags of its photos, using a language model backend.
package describe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/pingallery/internal/domain"
)

// maxPromptPhotos caps how many photos are listed in the prompt.
const maxPromptPhotos = 30

// ErrEmptyCollection is returned when there is nothing to describe.
var ErrEmptyCollection = errors.New("collection has no photos to describe")

type Describer interface {
	Describe(ctx context.Context, c domain.Collection) (string, error)
}

// Prompt builds the instruction sent to every backend.
func Prompt(c domain.Collection) (string, error) {
	if len(c.Photos) == 0 {
		return "", ErrEmptyCollection
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a one-sentence description, under 200 characters, for a photo collection named %q.\n", c.Name)
	b.WriteString("It contains these photos (title, then tags):\n")
	for i, p := range c.Photos {
		if i == maxPromptPhotos {
			fmt.Fprintf(&b, "- and %d more\n", len(c.Photos)-maxPromptPhotos)
			break
		}
		fmt.Fprintf(&b, "- %s", p.Title)
		if len(p.Tags) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(p.Tags, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("Respond with the description only, no quotes or preamble.")
	return b.String(), nil
}
