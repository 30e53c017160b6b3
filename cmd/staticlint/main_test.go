package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabledStaticchecks(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ConfigData
		expected []string
	}{
		{"none", ConfigData{}, nil},
		{"known", ConfigData{Staticcheck: []string{"SA4006", "SA1000"}}, []string{"SA1000", "SA4006"}},
		{"unknown is skipped", ConfigData{Staticcheck: []string{"XX0000"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, a := range enabledStaticchecks(tt.cfg) {
				names = append(names, a.Name)
			}
			assert.ElementsMatch(t, tt.expected, names)
		})
	}
}
