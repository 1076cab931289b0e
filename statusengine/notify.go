package statusengine

import (
	"runtime"

	"github.com/go-toast/toast"

	"apiary/log"
)

// Notifier delivers a single notification for a Pod that has just entered
// Permission status.
type Notifier interface {
	Notify(title, body string, sound bool) error
}

// LogNotifier always succeeds and records the notification via the
// application logger. It is the notifier PlatformNotifier returns on
// non-Windows platforms.
type LogNotifier struct{}

func (LogNotifier) Notify(title, body string, sound bool) error {
	log.InfoLog.Printf("notify: %s: %s (sound=%v)", title, body, sound)
	return nil
}

// ToastNotifier delivers Windows toast notifications. On any other
// platform, Notify is a no-op that defers to the log.
type ToastNotifier struct {
	AppID string
}

func NewToastNotifier(appID string) *ToastNotifier {
	if appID == "" {
		appID = "apiary"
	}
	return &ToastNotifier{AppID: appID}
}

func (t *ToastNotifier) Notify(title, body string, sound bool) error {
	if runtime.GOOS != "windows" {
		return LogNotifier{}.Notify(title, body, sound)
	}
	audio := toast.Default
	if sound {
		audio = toast.IM
	}
	n := toast.Notification{
		AppID:   t.AppID,
		Title:   title,
		Message: body,
		Audio:   audio,
	}
	return n.Push()
}

// PlatformNotifier returns a ToastNotifier on Windows and a LogNotifier
// everywhere else.
func PlatformNotifier() Notifier {
	if runtime.GOOS == "windows" {
		return NewToastNotifier("apiary")
	}
	return LogNotifier{}
}
