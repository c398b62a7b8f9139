// Package gesture classifies hand poses into a closed set of named gestures and
// debounces them into deliberate, held commands.
package gesture

import (
	"github.com/ayusman/drishti/internal/landmark"
)

// Gesture is a recognized hand pose.
type Gesture int

const (
	None Gesture = iota
	Fist
	OpenPalm
	Peace
	ThumbsUp
	ThumbsDown
	PointUp
	Rock
	CallMe
	ILoveYou
	LShape
	One
	Two
	Three
	Four
)

var gestureNames = [...]string{
	None:       "none",
	Fist:       "fist",
	OpenPalm:   "open_palm",
	Peace:      "peace",
	ThumbsUp:   "thumbs_up",
	ThumbsDown: "thumbs_down",
	PointUp:    "point_up",
	Rock:       "rock",
	CallMe:     "call_me",
	ILoveYou:   "i_love_you",
	LShape:     "l_shape",
	One:        "one",
	Two:        "two",
	Three:      "three",
	Four:       "four",
}

// String returns the snake_case gesture name.
func (g Gesture) String() string {
	if g < 0 || int(g) >= len(gestureNames) {
		return gestureNames[None]
	}
	return gestureNames[g]
}

// MarshalText encodes the gesture by name.
func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText decodes a gesture name. Unknown names decode to None.
func (g *Gesture) UnmarshalText(b []byte) error {
	*g = None
	for i, name := range gestureNames {
		if name == string(b) {
			*g = Gesture(i)
			break
		}
	}
	return nil
}

// Finger positions within Fingers.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// Fingers holds the raised state of each finger, thumb first.
type Fingers [5]bool

// Count returns the number of raised fingers.
func (f Fingers) Count() int {
	n := 0
	for _, up := range f {
		if up {
			n++
		}
	}
	return n
}

// exact maps finger patterns to gestures. The thumb-only pattern is resolved
// separately because it depends on the thumb direction.
var exact = map[Fingers]Gesture{
	{false, false, false, false, false}: Fist,
	{true, true, true, true, true}:      OpenPalm,
	{false, true, true, false, false}:   Peace,
	{false, true, false, false, false}:  PointUp,
	{false, true, false, false, true}:   Rock,
	{true, false, false, false, true}:   CallMe,
	{true, true, false, false, true}:    ILoveYou,
	{true, true, false, false, false}:   LShape,
}

var thumbOnly = Fingers{true, false, false, false, false}

var byCount = [...]Gesture{1: One, 2: Two, 3: Three, 4: Four}

// Lookup resolves a finger pattern to a gesture: an exact pattern match first,
// then a count of one to four raised fingers, then None. thumbUp selects
// between ThumbsUp and ThumbsDown for the thumb-only pattern.
func Lookup(f Fingers, thumbUp bool) Gesture {
	if f == thumbOnly {
		if thumbUp {
			return ThumbsUp
		}
		return ThumbsDown
	}
	if g, ok := exact[f]; ok {
		return g
	}
	if n := f.Count(); n > 0 && n < len(byCount) {
		return byCount[n]
	}
	return None
}

// Classification is the per-hand classifier output.
type Classification struct {
	Fingers    Fingers `json:"fingers"`
	Count      int     `json:"count"`
	Gesture    Gesture `json:"gesture"`
	Handedness string  `json:"handedness"`
}

// RaisedFingers decides which fingers are extended. The thumb moves sideways,
// so it is raised when its tip lies outside the IP joint on the x axis, which
// flips with handedness. The other fingers are raised when the tip is above
// the PIP joint; image y grows downward.
func RaisedFingers(hand landmark.HandLandmarks) Fingers {
	p := hand.Points

	var f Fingers
	if hand.Handedness == landmark.HandLeft {
		f[Thumb] = p[landmark.ThumbTip].X < p[landmark.ThumbIP].X
	} else {
		f[Thumb] = p[landmark.ThumbTip].X > p[landmark.ThumbIP].X
	}
	f[Index] = p[landmark.IndexTip].Y < p[landmark.IndexPIP].Y
	f[Middle] = p[landmark.MiddleTip].Y < p[landmark.MiddlePIP].Y
	f[Ring] = p[landmark.RingTip].Y < p[landmark.RingPIP].Y
	f[Pinky] = p[landmark.PinkyTip].Y < p[landmark.PinkyPIP].Y
	return f
}

// Classify names the gesture shown by hand.
func Classify(hand landmark.HandLandmarks) Classification {
	f := RaisedFingers(hand)
	thumbUp := hand.Points[landmark.ThumbTip].Y < hand.Points[landmark.Wrist].Y
	return Classification{
		Fingers:    f,
		Count:      f.Count(),
		Gesture:    Lookup(f, thumbUp),
		Handedness: hand.Handedness,
	}
}
