package model

import (
	"encoding/json"
	"testing"
)

func TestHolesUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{`18`, 18, false},
		{`0`, 0, false},
		{`[1,2,3]`, 3, false},
		{`null`, 0, false},
		{`2e7`, 0, true},
		{`-3`, 0, true},
		{`37`, 0, true},
		{`9.5`, 0, true},
		{`[0]`, 0, true},
		{`[1,-4]`, 0, true},
		{`[1,99]`, 0, true},
		{`"18"`, 0, true},
	}
	for _, tt := range tests {
		var h Holes
		err := json.Unmarshal([]byte(tt.in), &h)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Unmarshal(%s) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && h.Count() != tt.want {
			t.Fatalf("Unmarshal(%s) = %v, want %d holes", tt.in, h, tt.want)
		}
	}
}

func TestHolesFromCount(t *testing.T) {
	h, err := HolesFromCount(4)
	if err != nil || len(h) != 4 || h[0] != 1 || h[3] != 4 {
		t.Fatalf("HolesFromCount(4) = %v, %v", h, err)
	}
	if _, err := HolesFromCount(MaxHoles + 1); err == nil {
		t.Fatal("count above MaxHoles accepted")
	}
	if _, err := HolesFromCount(-1); err == nil {
		t.Fatal("negative count accepted")
	}
}

func TestTournamentRejectsUnboundedHoles(t *testing.T) {
	var tour Tournament
	if err := json.Unmarshal([]byte(`{"id":"T1","holes":20000000}`), &tour); err == nil {
		t.Fatalf("tournament accepted %d holes", tour.Holes.Count())
	}
}
