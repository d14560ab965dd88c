package main

import (
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/learncards/internal/view"
)

// ViewFlag selects the due subset or every card.
type ViewFlag view.Mode

func (v *ViewFlag) Set(val string) error {
	mode, err := view.ParseMode(val)
	if err != nil {
		return err
	}
	*v = ViewFlag(mode)
	return nil
}

func (v ViewFlag) String() string {
	return string(v)
}

func (v *ViewFlag) Type() string {
	return "view"
}

var _ pflag.Value = (*ViewFlag)(nil)
