package util

import (
	"github.com/spf13/cobra"

	"github.com/AtMostafa/bnd/pkg/session"
)

// ModalityFlags are the `--ignore-*` flags shared by the commands that act
// on a session's data.
type ModalityFlags struct {
	IgnoreBehavior bool
	IgnoreEphys    bool
	IgnoreVideos   bool
}

// AddTo registers the flags on `cmd`.
func (f *ModalityFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.IgnoreBehavior, "ignore-behavior", false,
		"Skip the pycontrol behavioral data.")
	cmd.Flags().BoolVar(&f.IgnoreEphys, "ignore-ephys", false,
		"Skip the SpikeGLX electrophysiology data.")
	cmd.Flags().BoolVar(&f.IgnoreVideos, "ignore-videos", false,
		"Skip the camera recordings.")
}

// Selection returns the modalities that weren't ignored. It returns a
// UsageError if every modality was ignored.
func (f ModalityFlags) Selection() (session.Selection, error) {
	sel := session.Selection{
		Behavior: !f.IgnoreBehavior,
		Ephys:    !f.IgnoreEphys,
		Video:    !f.IgnoreVideos,
	}
	if err := sel.Validate(); err != nil {
		return session.Selection{}, err
	}
	return sel, nil
}
