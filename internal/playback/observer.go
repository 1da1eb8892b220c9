package playback

import "github.com/hxnx/moonplayer/internal/music"

// StateEvent describes a state transition. Err is set when the transition was
// caused by a failure (ErrResolveFailure, ErrLoadFailure, ErrStartTimeout,
// ErrEngineFailure).
type StateEvent struct {
	Token Token
	Track music.Track
	State State
	Err   error
}

// Observer receives progress samples and state changes. Callbacks run while
// the controller holds its lock: they must return quickly and must not call
// back into the controller.
type Observer interface {
	ProgressChanged(p Progress)
	StateChanged(ev StateEvent)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnProgress func(Progress)
	OnState    func(StateEvent)
}

func (o ObserverFuncs) ProgressChanged(p Progress) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}

func (o ObserverFuncs) StateChanged(ev StateEvent) {
	if o.OnState != nil {
		o.OnState(ev)
	}
}
