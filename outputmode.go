package camsession

import (
	"github.com/camkit/camsession/pkg/avdevice"
)

// outputModeManager keeps the session's output and microphone-input set
// consistent with the active CameraOutputMode. Outputs are created lazily
// and cached; a cached output is reused across mode switches until it is
// explicitly torn down.
type outputModeManager struct {
	backend  avdevice.Backend
	selector *deviceSelector

	photoOutput avdevice.PhotoOutput
	movieOutput avdevice.MovieOutput
	micInput    avdevice.Input
}

func (m *outputModeManager) photo() avdevice.PhotoOutput {
	if m.photoOutput == nil {
		m.photoOutput = m.backend.NewPhotoOutput()
	}
	return m.photoOutput
}

func (m *outputModeManager) movie() avdevice.MovieOutput {
	if m.movieOutput == nil {
		m.movieOutput = m.backend.NewMovieOutput()
	}
	return m.movieOutput
}

// applyMode swaps the session's outputs from old to new inside one
// configuration transaction. hadOld is false on initial setup, when there is
// nothing to detach. The caller re-applies the quality preset and re-runs
// orientation propagation afterwards, since freshly attached outputs start
// with default connection orientation.
func (m *outputModeManager) applyMode(sess avdevice.Session, new CameraOutputMode, old CameraOutputMode, hadOld bool) error {
	sess.BeginConfiguration()
	defer sess.CommitConfiguration()

	if hadOld {
		m.detach(sess, old)
	}

	switch {
	case new.IsVideo():
		out := m.movie()
		if err := sess.AddOutput(out); err != nil {
			return err
		}
		if new == VideoWithMic {
			if err := m.attachMicrophone(sess); err != nil {
				return err
			}
		}
	default:
		if err := sess.AddOutput(m.photo()); err != nil {
			return err
		}
	}
	return nil
}

func (m *outputModeManager) detach(sess avdevice.Session, mode CameraOutputMode) {
	if mode.IsVideo() {
		if m.movieOutput != nil {
			sess.RemoveOutput(m.movieOutput)
		}
		m.detachMicrophone(sess)
		return
	}
	if m.photoOutput != nil {
		sess.RemoveOutput(m.photoOutput)
	}
}

func (m *outputModeManager) attachMicrophone(sess avdevice.Session) error {
	if m.micInput != nil {
		return nil
	}
	mic, ok := m.selector.microphone()
	if !ok {
		// No microphone is not fatal; the movie records without audio.
		return nil
	}
	in, err := m.selector.inputFor(mic)
	if err != nil {
		return err
	}
	if err := sess.AddInput(in); err != nil {
		return err
	}
	m.micInput = in
	return nil
}

func (m *outputModeManager) detachMicrophone(sess avdevice.Session) {
	if m.micInput != nil {
		sess.RemoveInput(m.micInput)
		m.micInput = nil
	}
}

// release drops the cached outputs so a future setup recreates them.
func (m *outputModeManager) release() {
	m.photoOutput = nil
	m.movieOutput = nil
	m.micInput = nil
}

// presetFor maps the user-level quality to a session preset. Still and video
// modes map "high" to different underlying presets.
func presetFor(q CameraOutputQuality, mode CameraOutputMode) avdevice.Preset {
	switch q {
	case QualityLow:
		return avdevice.PresetLow
	case QualityMedium:
		return avdevice.PresetMedium
	default:
		if mode.IsVideo() {
			return avdevice.PresetHigh
		}
		return avdevice.PresetPhoto
	}
}
