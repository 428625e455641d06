package audio

import "context"

// DesktopPermission grants microphone access up front. Desktop platforms
// without a runtime prompt surface a denial as a device open failure instead.
type DesktopPermission struct{}

func (DesktopPermission) RequestMicrophone(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}
