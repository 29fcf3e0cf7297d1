package soc

import "strings"

// AppID identifies the application a trace was captured from.
type AppID int

// The applications known to the flow table.
const (
	YouTube AppID = iota
	VideoRecord
	PhotoCapture
	AudioPlay
	ARGame
	Gallery
	AudioRecord
	VideoPlayer
	AngryBirds
	Skype
	Facebook
	MPGame
	OtherApp
	NumApps
)

var appPatterns = []struct {
	pattern string
	id      AppID
}{
	{"youtube", YouTube},
	{"video-record", VideoRecord},
	{"photo-capture", PhotoCapture},
	{"audio-play", AudioPlay},
	{"argame", ARGame},
	{"gallery", Gallery},
	{"audio-record", AudioRecord},
	{"video-play", VideoPlayer},
	{"angrybirds", AngryBirds},
	{"skype", Skype},
	{"facebook", Facebook},
	{"mpgame", MPGame},
}

var appNames = [NumApps]string{
	"youtube", "video-record", "photo-capture", "audio-play", "argame",
	"gallery", "audio-record", "video-play", "angrybirds", "skype",
	"facebook", "mpgame", "other",
}

func (a AppID) String() string {
	if a >= 0 && a < NumApps {
		return appNames[a]
	}

	return "invalid"
}

// AppIDFromTrace guesses the application from a trace file name.
func AppIDFromTrace(traceName string) AppID {
	for _, p := range appPatterns {
		if strings.Contains(traceName, p.pattern) {
			return p.id
		}
	}

	return OtherApp
}

// HasSecondFlow tells if the application runs a second, concurrent flow
// whose slack is tracked separately.
func (a AppID) HasSecondFlow() bool {
	switch a {
	case YouTube, PhotoCapture, AudioPlay, Gallery, AudioRecord,
		VideoPlayer, OtherApp:
		return false
	}

	return true
}

// AppType tells what bounds the progress of a core trace.
type AppType int

// The app types.
const (
	CoreBound AppType = iota
	DisplayBound
	VideoPlayback
	AudioPlayback
)

func (t AppType) String() string {
	switch t {
	case DisplayBound:
		return "display-bound"
	case VideoPlayback:
		return "video-playback"
	case AudioPlayback:
		return "audio-playback"
	}

	return "core-bound"
}

// AppTypeFromTrace reads the app type tag embedded in a trace name.
func AppTypeFromTrace(traceName string) AppType {
	switch {
	case strings.Contains(traceName, "DISP"):
		return DisplayBound
	case strings.Contains(traceName, "VID"):
		return VideoPlayback
	case strings.Contains(traceName, "AUD"):
		return AudioPlayback
	}

	return CoreBound
}
