package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"reelgen/internal/assets"
	"reelgen/internal/strip"
)

// ErrInvalidMode is returned for a mode selector outside a..h.
var ErrInvalidMode = errors.New("invalid mode")

// Shape is how a source image is resized into a tile.
type Shape int

const (
	// Square stretches the image to cell-width x cell-width (vertical
	// scroll) or cell-height x cell-height (horizontal scroll).
	Square Shape = iota
	// WidthFit scales to the cell width and keeps the aspect ratio.
	WidthFit
	// HeightFit scales to the cell height and keeps the aspect ratio.
	HeightFit
)

func (s Shape) String() string {
	switch s {
	case WidthFit:
		return "width-fit"
	case HeightFit:
		return "height-fit"
	default:
		return "square"
	}
}

// Direction decides whether a track scrolls backwards. A backwards track
// also shows its tiles in reverse order.
type Direction int

const (
	Forward Direction = iota
	// Backward tracks always run tail to head.
	Backward
	// Flip tracks run backwards only when the run's opposite flag is set.
	Flip
)

// Side selects which collection of a pair feeds a track.
type Side int

const (
	First Side = iota
	Second
)

// TrackSpec places one scrolling strip.
type TrackSpec struct {
	// Cell is the index of the partition cell the track occupies.
	Cell  int
	Group int
	Side  Side
	Dir   Direction
	// Stagger rotates the tile order so neighbouring tracks do not show
	// matching tiles side by side.
	Stagger int
	// OppositeStagger is added to Stagger when the opposite flag is set.
	OppositeStagger int
	// Enlarge > 0 marks a foreground track sized Enlarge times the base
	// cell and centred over the background. Foreground tracks never flip.
	Enlarge float64
}

// Foreground reports whether the track is an enlarged overlay.
func (t TrackSpec) Foreground() bool { return t.Enlarge > 0 }

// ModeSpec is a complete canvas layout.
type ModeSpec struct {
	Name        string
	Description string
	// Scroll is the axis strips move along.
	Scroll strip.Axis
	// Split is the axis cells are laid out along: Horizontal places
	// columns side by side, Vertical stacks rows.
	Split  strip.Axis
	Cells  int
	Shape  Shape
	Keying assets.Keying
	Groups int
	Tracks []TrackSpec
	// Slideshow adds the single-image foreground panel.
	Slideshow bool
}

// TrackCount is the number of scrolling strips in the mode.
func (m ModeSpec) TrackCount() int { return len(m.Tracks) }

var modes = map[string]ModeSpec{
	"a": {
		Name:        "a",
		Description: "two stacked rows scrolling vertically, width-fit tiles",
		Scroll:      strip.Vertical,
		Split:       strip.Vertical,
		Cells:       2,
		Shape:       WidthFit,
		Keying:      assets.ByNumber,
		Groups:      1,
		Tracks: []TrackSpec{
			{Cell: 0, Side: First, Dir: Forward},
			{Cell: 1, Side: Second, Dir: Flip, Stagger: 1},
		},
	},
	"b": {
		Name:        "b",
		Description: "two columns scrolling vertically, square tiles",
		Scroll:      strip.Vertical,
		Split:       strip.Horizontal,
		Cells:       2,
		Shape:       Square,
		Keying:      assets.ByNumber,
		Groups:      1,
		Tracks: []TrackSpec{
			{Cell: 0, Side: First, Dir: Forward},
			{Cell: 1, Side: Second, Dir: Flip},
		},
	},
	"c": {
		Name:        "c",
		Description: "four columns scrolling vertically, alternate columns run backwards",
		Scroll:      strip.Vertical,
		Split:       strip.Horizontal,
		Cells:       4,
		Shape:       Square,
		Keying:      assets.ByBasename,
		Groups:      2,
		Tracks: []TrackSpec{
			{Cell: 0, Group: 0, Side: First, Dir: Forward, OppositeStagger: 1},
			{Cell: 1, Group: 0, Side: Second, Dir: Backward},
			{Cell: 2, Group: 1, Side: First, Dir: Forward, OppositeStagger: 1},
			{Cell: 3, Group: 1, Side: Second, Dir: Backward},
		},
	},
	"d": {
		Name:        "d",
		Description: "two outer columns with two enlarged centre columns overlaid",
		Scroll:      strip.Vertical,
		Split:       strip.Horizontal,
		Cells:       4,
		Shape:       Square,
		Keying:      assets.ByBasename,
		Groups:      2,
		Tracks: []TrackSpec{
			{Cell: 0, Group: 0, Side: First, Dir: Forward},
			{Cell: 3, Group: 0, Side: Second, Dir: Flip},
			{Cell: 0, Group: 1, Side: First, Dir: Forward, Enlarge: 1.3},
			{Cell: 1, Group: 1, Side: Second, Dir: Forward, Enlarge: 1.3},
		},
	},
	"e": {
		Name:        "e",
		Description: "two rows scrolling horizontally, height-fit tiles",
		Scroll:      strip.Horizontal,
		Split:       strip.Vertical,
		Cells:       2,
		Shape:       HeightFit,
		Keying:      assets.ByNumber,
		Groups:      1,
		Tracks: []TrackSpec{
			{Cell: 0, Side: First, Dir: Forward},
			{Cell: 1, Side: Second, Dir: Flip},
		},
	},
	"f": {
		Name:        "f",
		Description: "four rows scrolling horizontally, square tiles",
		Scroll:      strip.Horizontal,
		Split:       strip.Vertical,
		Cells:       4,
		Shape:       Square,
		Keying:      assets.ByBasename,
		Groups:      2,
		Tracks: []TrackSpec{
			{Cell: 0, Group: 0, Side: First, Dir: Forward},
			{Cell: 1, Group: 0, Side: Second, Dir: Flip},
			{Cell: 2, Group: 1, Side: First, Dir: Forward},
			{Cell: 3, Group: 1, Side: Second, Dir: Flip},
		},
	},
	"g": {
		Name:        "g",
		Description: "six rows scrolling horizontally in alternating directions",
		Scroll:      strip.Horizontal,
		Split:       strip.Vertical,
		Cells:       6,
		Shape:       HeightFit,
		Keying:      assets.ByBasename,
		Groups:      3,
		Tracks:      sixRows(),
	},
	"h": {
		Name:        "h",
		Description: "six-row background with a single-image slideshow panel in the centre",
		Scroll:      strip.Horizontal,
		Split:       strip.Vertical,
		Cells:       6,
		Shape:       HeightFit,
		Keying:      assets.ByBasename,
		Groups:      3,
		Tracks:      sixRows(),
		Slideshow:   true,
	},
}

func sixRows() []TrackSpec {
	tracks := make([]TrackSpec, 6)
	for i := range tracks {
		t := TrackSpec{Cell: i, Group: i / 2, Side: Side(i % 2)}
		if i%2 == 1 {
			t.Dir = Backward
		} else {
			t.OppositeStagger = 1
		}
		tracks[i] = t
	}
	return tracks
}

// Lookup returns the layout registered under name.
func Lookup(name string) (ModeSpec, error) {
	spec, ok := modes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ModeSpec{}, fmt.Errorf("%w %q (want one of %s)", ErrInvalidMode, name, strings.Join(Names(), ", "))
	}
	return spec, nil
}

// Names lists the registered modes in order.
func Names() []string {
	names := make([]string, 0, len(modes))
	for name := range modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Modes returns every registered layout in name order.
func Modes() []ModeSpec {
	out := make([]ModeSpec, 0, len(modes))
	for _, name := range Names() {
		out = append(out, modes[name])
	}
	return out
}
