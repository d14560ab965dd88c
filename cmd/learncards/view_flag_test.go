package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/at-ishikawa/learncards/internal/view"
)

func TestViewFlag_Set(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    ViewFlag
		wantErr bool
	}{
		{name: "due", value: "due", want: ViewFlag(view.ModeDue)},
		{name: "all", value: "all", want: ViewFlag(view.ModeAll)},
		{name: "invalid", value: "later", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v ViewFlag
			err := v.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestViewFlag_String(t *testing.T) {
	v := ViewFlag(view.ModeAll)
	assert.Equal(t, "all", v.String())
	assert.Equal(t, "view", v.Type())
}
