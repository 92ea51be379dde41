package sponsorblock

import (
	"reflect"
	"testing"
)

func TestMergeFoldsOverlaps(t *testing.T) {
	in := []Segment{{Start: 50, End: 60}, {Start: 10, End: 20}, {Start: 15, End: 30}, {Start: 30, End: 35}}
	got := Merge(in)
	want := []Segment{{Start: 10, End: 35}, {Start: 50, End: 60}}
	if len(got) != len(want) {
		t.Fatalf("Merge = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].Start != want[i].Start || got[i].End != want[i].End {
			t.Fatalf("Merge[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if in[0].Start != 50 {
		t.Fatal("Merge must not reorder its input")
	}
}

func TestKeepIntervals(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		duration float64
		want     []Interval
	}{
		{"middle", []Segment{{Start: 10, End: 20}}, 60, []Interval{{0, 10}, {20, 60}}},
		{"leading", []Segment{{Start: 0, End: 5}}, 10, []Interval{{5, 10}}},
		{"trailing", []Segment{{Start: 50, End: 60}}, 60, []Interval{{0, 50}}},
		{"everything", []Segment{{Start: 0, End: 100}}, 100, nil},
		{"nested", []Segment{{Start: 10, End: 40}, {Start: 20, End: 30}}, 50, []Interval{{0, 10}, {40, 50}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeepIntervals(tt.segments, tt.duration)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("KeepIntervals = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFilters(t *testing.T) {
	video, audio, ok := Filters([]Segment{{Start: 10, End: 20}, {Start: 15, End: 30}, {Start: 50, End: 60.5}}, 100)
	if !ok {
		t.Fatal("expected filters")
	}
	expr := "between(t,0,10)+between(t,30,50)+between(t,60.5,100)"
	if video != "select='"+expr+"',setpts=N/FRAME_RATE/TB" {
		t.Fatalf("unexpected video filter %q", video)
	}
	if audio != "aselect='"+expr+"',asetpts=N/SR/TB" {
		t.Fatalf("unexpected audio filter %q", audio)
	}
	if _, _, ok := Filters([]Segment{{Start: 0, End: 100}}, 100); ok {
		t.Fatal("expected no filters when every second is removed")
	}
}

func TestTotalDuration(t *testing.T) {
	if got := TotalDuration([]Segment{{Start: 0, End: 2.5}, {Start: 10, End: 20}}); got != 12.5 {
		t.Fatalf("TotalDuration = %v", got)
	}
	if got := TempPath("/out/My Clip.mp4"); got != "/out/My Clip_nosponsor.mp4" {
		t.Fatalf("TempPath = %q", got)
	}
}
