package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int
	}{
		{"blank defaults to every day", "", EveryDay},
		{"garbage defaults to every day", "mon,tue", EveryDay},
		{"sorted and deduplicated", "5,1,3,1", []int{1, 3, 5}},
		{"out of range dropped", "0,2,9", []int{2}},
		{"whitespace tolerated", " 6 , 7 ", []int{6, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseFrequency(tt.in)); diff != "" {
				t.Errorf("ParseFrequency(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseFrequencyDoesNotAliasDefault(t *testing.T) {
	days := ParseFrequency("")
	days[0] = 99
	if EveryDay[0] != 1 {
		t.Fatal("ParseFrequency returned the shared default slice")
	}
}

func TestFormatFrequency(t *testing.T) {
	if got := FormatFrequency([]int{7, 1, 3}); got != "1,3,7" {
		t.Errorf("FormatFrequency() = %q, want %q", got, "1,3,7")
	}
}

func TestDescribeFrequency(t *testing.T) {
	if got := DescribeFrequency(EveryDay); got != "daily" {
		t.Errorf("DescribeFrequency(all) = %q", got)
	}
	if got := DescribeFrequency([]int{7, 1}); got != "Mon,Sun" {
		t.Errorf("DescribeFrequency([7 1]) = %q", got)
	}
}

func TestIsoWeekday(t *testing.T) {
	if IsoWeekday(time.Sunday) != 7 || IsoWeekday(time.Monday) != 1 || IsoWeekday(time.Saturday) != 6 {
		t.Error("IsoWeekday mapping is wrong")
	}
}
