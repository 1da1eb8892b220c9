package playback

import "errors"

var (
	ErrResolveFailure  = errors.New("no playable source found")
	ErrLoadFailure     = errors.New("engine could not open source")
	ErrStartTimeout    = errors.New("engine did not start playback in time")
	ErrEngineFailure   = errors.New("engine failed during playback")
	ErrPlaylistEmpty   = errors.New("playlist is empty")
	ErrNothingLoaded   = errors.New("nothing is loaded")
	ErrNotStarted      = errors.New("playback has not started yet")
	ErrSuperseded      = errors.New("playback superseded by a newer command")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrPositionUnknown = errors.New("position is not known yet")
)
