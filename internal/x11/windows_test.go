package x11

import (
	"reflect"
	"testing"
)

func TestFilterMaximized(t *testing.T) {
	tests := []struct {
		name   string
		states []string
		want   []string
	}{
		{name: "none", states: nil, want: nil},
		{name: "other states", states: []string{"_NET_WM_STATE_ABOVE", "_NET_WM_STATE_HIDDEN"}, want: nil},
		{
			name:   "both axes",
			states: []string{"_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_FOCUSED", "_NET_WM_STATE_MAXIMIZED_HORZ"},
			want:   []string{"_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ"},
		},
		{name: "one axis", states: []string{"_NET_WM_STATE_MAXIMIZED_HORZ"}, want: []string{"_NET_WM_STATE_MAXIMIZED_HORZ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterMaximized(tt.states); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("filterMaximized(%v) = %v, want %v", tt.states, got, tt.want)
			}
		})
	}
}
