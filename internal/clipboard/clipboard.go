package clipboard

import (
	"context"

	cb "github.com/atotto/clipboard"
)

// System writes to the OS clipboard through xclip, pbcopy or the Windows API.
type System struct{}

func (System) SetText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return cb.WriteAll(text)
}

// Available reports whether a clipboard utility was found.
func Available() bool {
	return !cb.Unsupported
}
